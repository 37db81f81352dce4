package storage

import "time"

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectOffering  ProjectStatus = "offering"
	ProjectExecution ProjectStatus = "execution"
	ProjectClosed    ProjectStatus = "closed"
	ProjectRejected  ProjectStatus = "rejected"
)

type Project struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Client             string        `json:"client"`
	Status             ProjectStatus `json:"status"`
	AcceptedRevisionID *int64        `json:"accepted_revision_id"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type NewProject struct {
	Name   string `json:"name"`
	Client string `json:"client"`
}

// DocumentProgress is the completion of one order or contract.
type DocumentProgress struct {
	ID      int64  `json:"id"`
	Number  string `json:"number"`
	Status  string `json:"status"`
	Percent int    `json:"percent"`
}

type ProjectProgress struct {
	ProjectID        int64              `json:"project_id"`
	Status           ProjectStatus      `json:"status"`
	Orders           []DocumentProgress `json:"orders"`
	Contracts        []DocumentProgress `json:"contracts"`
	OrdersPercent    int                `json:"orders_percent"`
	ContractsPercent int                `json:"contracts_percent"`
}
