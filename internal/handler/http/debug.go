package http

import (
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/spreadsheet"
)

const probeRows = 20

// StoreInfo describes the connected row store for diagnostics.
type StoreInfo struct {
	Driver     string
	DocumentID string
	Account    string
}

type DebugHandler interface {
	Store(w http.ResponseWriter, r *http.Request)
}

type debugHandlerImpl struct {
	store  rowstore.Store
	layout spreadsheet.Layout
	info   StoreInfo
}

func NewDebugHandler(store rowstore.Store, layout spreadsheet.Layout, info StoreInfo) DebugHandler {
	return &debugHandlerImpl{store: store, layout: layout, info: info}
}

type storeReport struct {
	Status         string     `json:"status"`
	Driver         string     `json:"driver"`
	SheetID        string     `json:"sheetId"`
	ConnectedEmail string     `json:"connectedEmail,omitempty"`
	Range          string     `json:"range"`
	Values         [][]string `json:"values,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// Store implements DebugHandler. It reads the top of the roster raw so
// credential and sharing problems show up with the account involved.
func (h *debugHandlerImpl) Store(w http.ResponseWriter, r *http.Request) {
	report := storeReport{
		Status:         "Connected",
		Driver:         h.info.Driver,
		SheetID:        h.info.DocumentID,
		ConnectedEmail: h.info.Account,
	}

	probe, err := spreadsheet.Probe(r.Context(), h.store, h.layout, probeRows)
	report.Range = probe.Range
	if err != nil {
		report.Status = "Error"
		report.Message = err.Error()
		response.WriteJSON(w, http.StatusInternalServerError, report)
		return
	}
	report.Values = probe.Values
	response.JSON(w, report)
}
