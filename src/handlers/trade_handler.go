// backend/src/handlers/trade_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/wheelfolio/backend/src/models"
	"github.com/username/wheelfolio/backend/src/services"
	"github.com/username/wheelfolio/backend/src/utils"
)

type TradeHandler struct {
	analysisService services.AnalysisService
}

func NewTradeHandler(service services.AnalysisService) *TradeHandler {
	return &TradeHandler{
		analysisService: service,
	}
}

func (h *TradeHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	trades, err := h.analysisService.GetTrades()
	if err != nil {
		ctxLogger.Error("Error retrieving trades", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trades: %v", err), http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trades); err != nil {
		ctxLogger.Error("Error generating JSON response for trades", "error", err)
	}
}

// HandleDeleteAllData clears every trade, upload record and imported
// snapshot. There is no partial delete; the analysis is recomputed from
// scratch on the next request.
func (h *TradeHandler) HandleDeleteAllData(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)
	ctxLogger.Info("Handling delete all data request")

	if err := h.analysisService.DeleteAllData(); err != nil {
		ctxLogger.Error("Error deleting data", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error deleting data: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "all data deleted"})
}
