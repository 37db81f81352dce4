package generate_excel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"estimate-backend/http-server/response"
)

type GenerateExcelHandler interface {
	ExportRevision(ctx context.Context, revisionID int64) ([]byte, string, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func GenerateRevisionExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateRevisionExcel"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		// workbook rendering gets more time than a plain read
		ctx, cancel := context.WithTimeout(r.Context(), 2*response.Timeout)
		defer cancel()

		excelBytes, fileName, err := gen.ExportRevision(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(fileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(excelBytes)))
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write workbook", slog.String("op", op), slog.Any("err", err))
			return
		}
		log.Info("revision exported", slog.String("op", op), slog.Int64("revision_id", id), slog.Int("bytes", len(excelBytes)))
	}
}
