package service

import (
	"fmt"
	"strings"

	"github.com/sunjava/telcodesk/internal/models"
)

// FormatOutcome renders a tool outcome into the chat reply. Pure function so
// the wording can be tested without any backend in place.
func FormatOutcome(outcome *ToolOutcome) *models.ChatReply {
	if outcome.NeedsClarification {
		return formatClarification(outcome)
	}
	if !outcome.Success {
		return &models.ChatReply{
			Response:   outcome.Message,
			ToolResult: outcome.Tool,
		}
	}

	switch outcome.Tool {
	case "suspend_lines", "restore_lines", "reactivate_cancelled_lines":
		return formatBulk(outcome)
	case "add_service_to_lines":
		return formatAddService(outcome)
	case "get_account_summary":
		return formatSummary(outcome)
	case "list_account_lines":
		return formatLineList(outcome)
	case "add_line_to_account":
		return &models.ChatReply{
			Response:     "Opening the new line form for you now.",
			ToolResult:   outcome.Tool,
			TriggerModal: outcome.TriggerModal,
		}
	case "mirror_line", "upgrade_line":
		return formatModalLine(outcome)
	}

	return &models.ChatReply{Response: outcome.Message, ToolResult: outcome.Tool}
}

func formatClarification(outcome *ToolOutcome) *models.ChatReply {
	var b strings.Builder
	switch {
	case outcome.Message != "":
		b.WriteString(outcome.Message + "\n")
	case outcome.Tool == "suspend_lines":
		b.WriteString("You have multiple active lines. Which one would you like to suspend?\n")
	default:
		b.WriteString("I found multiple matching lines. Please be more specific:\n")
	}
	for _, line := range outcome.Candidates {
		fmt.Fprintf(&b, "• %s — %s (%s)\n", line.LineName, line.EmployeeName, line.MSDN)
	}

	return &models.ChatReply{
		Response:           strings.TrimRight(b.String(), "\n"),
		ToolResult:         outcome.Tool,
		NeedsClarification: true,
	}
}

var bulkVerbs = map[string]string{
	"suspend_lines":              "suspended",
	"restore_lines":              "restored",
	"reactivate_cancelled_lines": "reactivated",
}

func formatBulk(outcome *ToolOutcome) *models.ChatReply {
	verb := bulkVerbs[outcome.Tool]
	result := outcome.BulkResult

	var b strings.Builder
	if outcome.AutoApplied && len(result.Results) == 1 {
		fmt.Fprintf(&b, "✅ Successfully %s your only active line: %s", verb, result.Results[0].Line.LineName)
	} else {
		fmt.Fprintf(&b, "✅ Successfully %s %d line(s)", verb, result.Updated)
	}

	for _, item := range result.Results {
		if item.Applied {
			fmt.Fprintf(&b, "\n• %s (%s)", item.Line.LineName, item.Line.EmployeeName)
		}
	}
	for _, item := range result.Results {
		if !item.Applied {
			fmt.Fprintf(&b, "\n⏭️ Skipped: %s", item.Note)
		}
	}

	return &models.ChatReply{
		Response:      b.String(),
		ToolResult:    outcome.Tool,
		RefreshNeeded: result.Updated > 0,
	}
}

func formatAddService(outcome *ToolOutcome) *models.ChatReply {
	result := outcome.AddResult

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Successfully added %s to %d line(s). Total cost: $%.2f",
		result.Service.Name, len(result.AddedLines), result.TotalCost)
	for _, line := range result.AddedLines {
		fmt.Fprintf(&b, "\n• %s (%s)", line.LineName, line.EmployeeName)
	}
	if len(result.SkippedLines) > 0 {
		fmt.Fprintf(&b, "\n⏭️ %d line(s) already had this service", len(result.SkippedLines))
	}

	return &models.ChatReply{
		Response:      b.String(),
		ToolResult:    outcome.Tool,
		RefreshNeeded: len(result.AddedLines) > 0,
	}
}

func formatSummary(outcome *ToolOutcome) *models.ChatReply {
	account := outcome.Summary.Account
	counts := outcome.Summary.Lines

	var b strings.Builder
	b.WriteString("📋 Account Summary\n")
	fmt.Fprintf(&b, "Account: %s\n", account.AccountNumber)
	fmt.Fprintf(&b, "Owner: %s\n", account.OwnerName)
	fmt.Fprintf(&b, "Status: %s\n", account.Status)
	fmt.Fprintf(&b, "Type: %s\n", account.AccountType)
	fmt.Fprintf(&b, "Lines: %d total (%d active, %d suspended, %d cancelled)\n",
		counts.Total, counts.Active, counts.Suspended, counts.Cancelled)
	fmt.Fprintf(&b, "Active services: %d ($%.2f/month)",
		outcome.Summary.ActiveServices, outcome.Summary.MonthlyServiceCost)

	return &models.ChatReply{
		Response:   b.String(),
		ToolResult: outcome.Tool,
	}
}

func formatLineList(outcome *ToolOutcome) *models.ChatReply {
	if len(outcome.Lines) == 0 {
		return &models.ChatReply{
			Response:   "No lines found on this account.",
			ToolResult: outcome.Tool,
		}
	}

	var b strings.Builder
	b.WriteString("📱 Lines on this account:")
	for _, line := range outcome.Lines {
		fmt.Fprintf(&b, "\n• %s — %s (%s) [%s]", line.LineName, line.EmployeeName, line.MSDN, line.Status)
	}

	return &models.ChatReply{
		Response:   b.String(),
		ToolResult: outcome.Tool,
	}
}

func formatModalLine(outcome *ToolOutcome) *models.ChatReply {
	line := outcome.ModalLine

	var response string
	if outcome.Tool == "mirror_line" {
		response = fmt.Sprintf("Opening the mirror line form with %s's configuration.", line.LineName)
	} else {
		response = fmt.Sprintf("Opening the upgrade form for %s.", line.LineName)
	}

	return &models.ChatReply{
		Response:     response,
		ToolResult:   outcome.Tool,
		TriggerModal: outcome.TriggerModal,
		ModalLine:    summarizeLine(line),
	}
}

func summarizeLine(line *models.Line) *models.LineSummary {
	if line == nil {
		return nil
	}
	return &models.LineSummary{
		ID:             line.ID.Hex(),
		LineName:       line.LineName,
		EmployeeName:   line.EmployeeName,
		EmployeeNumber: line.EmployeeNumber,
		MSDN:           line.MSDN,
		Status:         string(line.Status),
		DeviceModel:    line.DeviceModel,
		DeviceColor:    line.DeviceColor,
		DeviceStorage:  line.DeviceStorage,
		PlanName:       line.PlanName,
		ProtectionName: line.ProtectionName,
	}
}
