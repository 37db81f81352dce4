package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getprices "estimate-backend/http-server/admin/get"
	saveprices "estimate-backend/http-server/admin/save"
	upprices "estimate-backend/http-server/admin/update"
	"estimate-backend/http-server/contract"
	generate_excel "estimate-backend/http-server/generate-report/generate-excel"
	"estimate-backend/http-server/ledger"
	getlibrary "estimate-backend/http-server/library/get"
	"estimate-backend/http-server/order"
	"estimate-backend/http-server/position"
	"estimate-backend/http-server/procurement"
	"estimate-backend/http-server/project"
	"estimate-backend/http-server/revision"
	"estimate-backend/internal/config"
	"estimate-backend/internal/middleware/auth"
	"estimate-backend/internal/service/estimate"
	"estimate-backend/internal/service/fulfillment"
	generate_excel2 "estimate-backend/internal/service/generate-excel"
	ledgersvc "estimate-backend/internal/service/ledger"
	"estimate-backend/internal/service/pricing"
	procurementsvc "estimate-backend/internal/service/procurement"
	projectsvc "estimate-backend/internal/service/project"
	"estimate-backend/internal/storage/mysql"
)

type services struct {
	storage     *mysql.Storage
	prices      *pricing.PriceService
	estimates   *estimate.EstimateService
	projects    *projectsvc.ProjectService
	procurement *procurementsvc.ProcurementService
	fulfillment *fulfillment.FulfillmentService
	ledger      *ledgersvc.LedgerService
	excel       *generate_excel2.GenerateExcelService
}

func newServices(storage *mysql.Storage) services {
	prices := pricing.NewPriceService(storage)
	return services{
		storage:     storage,
		prices:      prices,
		estimates:   estimate.NewEstimateService(storage, prices),
		projects:    projectsvc.NewProjectService(storage),
		procurement: procurementsvc.NewProcurementService(storage),
		fulfillment: fulfillment.NewFulfillmentService(storage),
		ledger:      ledgersvc.NewLedgerService(storage),
		excel:       generate_excel2.NewGenerateService(storage),
	}
}

func routes(cfg *config.Config, log *slog.Logger, svc services) http.Handler {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		// master data
		r.Get("/library", getlibrary.GetLibraryPositions(log, svc.storage))
		r.Get("/library/{id}", getlibrary.GetLibraryPosition(log, svc.storage))
		r.Get("/suppliers", getlibrary.GetSuppliers(log, svc.storage))
		r.Get("/subcontractors", getlibrary.GetSubcontractors(log, svc.storage))

		r.Post("/projects", project.Create(log, svc.projects))
		r.Get("/projects", project.List(log, svc.projects))
		r.Get("/projects/{id}", project.Get(log, svc.projects))
		r.Post("/projects/{id}/transition", project.Transition(log, svc.projects))
		r.Get("/projects/{id}/progress", project.Progress(log, svc.projects))

		r.Post("/projects/{id}/revisions", revision.Create(log, svc.estimates))
		r.Get("/projects/{id}/revisions", revision.List(log, svc.estimates))
		r.Get("/revisions/{id}", revision.Get(log, svc.estimates))
		r.Post("/revisions/{id}/lock", revision.Lock(log, svc.estimates))
		r.Post("/revisions/{id}/unlock", revision.Unlock(log, svc.estimates))
		r.Post("/revisions/{id}/copy", revision.Copy(log, svc.estimates))
		r.Post("/revisions/{id}/accept", project.AcceptRevision(log, svc.projects))
		r.Delete("/revisions/{id}", revision.Delete(log, svc.estimates))
		r.Get("/revisions/{id}/export", generate_excel.GenerateRevisionExcel(log, svc.excel))

		r.Post("/revisions/{id}/positions", position.Add(log, svc.estimates))
		r.Put("/positions/{id}", position.Update(log, svc.estimates))
		r.Delete("/positions/{id}", position.Delete(log, svc.estimates))
		r.Put("/positions/{id}/materials/{componentID}", position.UpdateMaterial(log, svc.estimates))
		r.Put("/positions/{id}/labor/{componentID}", position.UpdateLabor(log, svc.estimates))

		r.Post("/projects/{id}/purchase-orders/generate", procurement.GenerateOrders(log, svc.procurement))
		r.Post("/projects/{id}/contracts/generate", procurement.GenerateContracts(log, svc.procurement))

		r.Get("/projects/{id}/purchase-orders", order.List(log, svc.fulfillment))
		r.Get("/purchase-orders/{id}", order.Get(log, svc.fulfillment))
		r.Post("/purchase-orders/{id}/transition", order.Transition(log, svc.fulfillment))
		r.Post("/purchase-orders/{id}/deliveries", order.Deliver(log, svc.fulfillment))
		r.Put("/purchase-orders/{id}/lines/{lineID}", order.UpdateLine(log, svc.fulfillment))
		r.Delete("/purchase-orders/{id}", order.Delete(log, svc.fulfillment))

		r.Get("/projects/{id}/contracts", contract.List(log, svc.fulfillment))
		r.Get("/contracts/{id}", contract.Get(log, svc.fulfillment))
		r.Post("/contracts/{id}/transition", contract.Transition(log, svc.fulfillment))
		r.Put("/contracts/{id}/lines/{lineID}", contract.UpdateLine(log, svc.fulfillment))
		r.Delete("/contracts/{id}", contract.Delete(log, svc.fulfillment))
		r.Post("/contract-lines/{lineID}/executions", contract.Execute(log, svc.fulfillment))

		r.Post("/projects/{id}/ledger", ledger.Add(log, svc.ledger))
		r.Get("/projects/{id}/ledger", ledger.List(log, svc.ledger))
		r.Post("/ledger/{id}/paid", ledger.MarkPaid(log, svc.ledger))

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

			r.Get("/supplier-prices", getprices.GetSupplierPrices(log, svc.storage))
			r.Post("/supplier-prices", saveprices.SaveSupplierPrice(log, svc.prices))
			r.Put("/supplier-prices/{id}", upprices.UpdateSupplierPrice(log, svc.prices))
			r.Get("/subcontractor-rates", getprices.GetSubcontractorRates(log, svc.storage))
			r.Post("/subcontractor-rates", saveprices.SaveSubcontractorRate(log, svc.prices))
			r.Put("/subcontractor-rates/{id}", upprices.UpdateSubcontractorRate(log, svc.prices))
		})
	})

	return router
}
