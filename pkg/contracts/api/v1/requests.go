// Package api contains the request and response shapes of the v1 HTTP API.
package api

// DashboardRequest selects the reporting period of a dashboard view.
type DashboardRequest struct {
	Period string `json:"period" query:"period" validate:"omitempty,oneof=week month all"`
}

// ExportRequest selects the period and file format of a table export.
type ExportRequest struct {
	Period string `json:"period" query:"period" validate:"omitempty,oneof=week month all"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
	BOM    bool   `json:"bom" query:"bom"`
}

// Response is the envelope around every successful JSON payload.
type Response struct {
	Status  string      `json:"status"`
	Warning string      `json:"warning,omitempty"`
	Data    interface{} `json:"data"`
}

// Success wraps data in a success envelope.
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// SuccessWithWarning wraps data in a success envelope carrying a
// user-facing warning.
func SuccessWithWarning(data interface{}, warning string) Response {
	return Response{Status: "success", Warning: warning, Data: data}
}
