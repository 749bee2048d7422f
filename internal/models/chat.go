package models

// ChatMessage is one turn of the caller-supplied conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LineSummary is the compact line representation used in chat candidate
// lists and modal payloads.
type LineSummary struct {
	ID             string `json:"id"`
	LineName       string `json:"line_name"`
	EmployeeName   string `json:"employee_name"`
	EmployeeNumber string `json:"employee_number"`
	MSDN           string `json:"msdn"`
	Status         string `json:"status,omitempty"`
	DeviceModel    string `json:"device_model,omitempty"`
	DeviceColor    string `json:"device_color,omitempty"`
	DeviceStorage  string `json:"device_storage,omitempty"`
	PlanName       string `json:"plan_name,omitempty"`
	ProtectionName string `json:"protection_name,omitempty"`
}

// ChatReply is what the assistant hands back to the HTTP layer for a single
// turn: the user-facing text plus the machine-readable side channel.
type ChatReply struct {
	Response           string       `json:"response"`
	ToolResult         string       `json:"tool_result,omitempty"`
	RefreshNeeded      bool         `json:"refresh_needed"`
	NeedsClarification bool         `json:"needs_clarification,omitempty"`
	TriggerModal       string       `json:"trigger_modal,omitempty"`
	ModalLine          *LineSummary `json:"modal_line,omitempty"`
}
