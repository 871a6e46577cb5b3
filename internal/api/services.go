package api

import "github.com/listenupapp/readlog/internal/service"

// Services groups the business services used by the API server.
type Services struct {
	Finished *service.FinishedService
	Imports  *service.ImportService
	Exports  *service.ExportService
}
