package workflow

import "estimate-backend/internal/storage"

var OrderMachine = NewMachine[storage.OrderStatus, struct{}]("purchase order",
	Transition[storage.OrderStatus, struct{}]{From: storage.OrderDraft, To: storage.OrderSent},
	Transition[storage.OrderStatus, struct{}]{From: storage.OrderSent, To: storage.OrderPartiallyDelivered},
	Transition[storage.OrderStatus, struct{}]{From: storage.OrderPartiallyDelivered, To: storage.OrderDelivered},
	Transition[storage.OrderStatus, struct{}]{From: storage.OrderDelivered, To: storage.OrderSettled},
)

var ContractMachine = NewMachine[storage.ContractStatus, struct{}]("contract",
	Transition[storage.ContractStatus, struct{}]{From: storage.ContractDraft, To: storage.ContractSent},
	Transition[storage.ContractStatus, struct{}]{From: storage.ContractSent, To: storage.ContractSigned},
	Transition[storage.ContractStatus, struct{}]{From: storage.ContractSigned, To: storage.ContractCompleted},
	Transition[storage.ContractStatus, struct{}]{From: storage.ContractCompleted, To: storage.ContractSettled},
)

// CheckOrderDraft rejects edits and deletes of orders that left draft.
func CheckOrderDraft(status storage.OrderStatus, action string) error {
	if status != storage.OrderDraft {
		return storage.InvalidTransition("purchase order", string(status), action, "only draft orders can be changed")
	}
	return nil
}

func CheckContractDraft(status storage.ContractStatus, action string) error {
	if status != storage.ContractDraft {
		return storage.InvalidTransition("contract", string(status), action, "only draft contracts can be changed")
	}
	return nil
}

// CheckDeliverable allows deliveries only while the order is out with the
// supplier and not yet complete.
func CheckDeliverable(status storage.OrderStatus) error {
	if status != storage.OrderSent && status != storage.OrderPartiallyDelivered {
		return storage.InvalidTransition("purchase order", string(status), "deliver", "order is not awaiting delivery")
	}
	return nil
}

func CheckExecutable(status storage.ContractStatus) error {
	if status != storage.ContractSigned {
		return storage.InvalidTransition("contract", string(status), "execute", "contract is not signed")
	}
	return nil
}
