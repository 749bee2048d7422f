package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunjava/telcodesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToolOutcome is the structured result of one assistant tool run. The
// formatter turns it into the user-facing reply.
type ToolOutcome struct {
	Tool               string
	Success            bool
	Message            string
	NeedsClarification bool
	Candidates         []*models.Line
	BulkResult         *BulkResult
	AddResult          *AddServiceResult
	Summary            *AccountSummary
	Lines              []*models.Line
	TriggerModal       string
	ModalLine          *models.Line
	AutoApplied        bool
}

type toolArgs struct {
	ServiceType     string   `json:"service_type"`
	LineIdentifiers []string `json:"line_identifiers"`
	LineIdentifier  string   `json:"line_identifier"`
	StatusFilter    string   `json:"status_filter"`
	LineName        string   `json:"line_name"`
}

func decodeToolArgs(raw string) (toolArgs, error) {
	var args toolArgs
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return args, fmt.Errorf("failed to decode tool arguments: %w", err)
	}
	return args, nil
}

func (a *Assistant) toolAddService(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	outcome := &ToolOutcome{Tool: "add_service_to_lines"}

	result, err := a.subscriptions.AddServiceToLines(ctx, accountID, args.ServiceType, args.LineIdentifiers, "")
	if err == ErrServiceNotFound {
		outcome.Message = fmt.Sprintf("Service not found: %s", args.ServiceType)
		return outcome, nil
	}
	if err != nil {
		return nil, err
	}

	if len(result.AddedLines) == 0 && len(result.SkippedLines) == 0 {
		outcome.Message = a.noMatchMessage(ctx, accountID, args.LineIdentifiers, "")
		return outcome, nil
	}

	outcome.Success = true
	outcome.AddResult = result
	return outcome, nil
}

func (a *Assistant) toolListLines(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	status := models.LineStatus(strings.ToUpper(strings.TrimSpace(args.StatusFilter)))
	lines, err := a.lineOps.lines.FindByAccount(ctx, accountID, status)
	if err != nil {
		return nil, err
	}

	return &ToolOutcome{
		Tool:    "list_account_lines",
		Success: true,
		Lines:   lines,
	}, nil
}

func (a *Assistant) toolAccountSummary(ctx context.Context, accountID primitive.ObjectID, _ toolArgs) (*ToolOutcome, error) {
	summary, err := a.accounts.GetSummary(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &ToolOutcome{
		Tool:    "get_account_summary",
		Success: true,
		Summary: summary,
	}, nil
}

// toolSuspendLines carries the clarification flow: with no identifiers and a
// single active line it suspends it outright, with several it asks which one.
// Identifiers resolve against every line on the account; any multi-match asks
// for clarification, and a match that is not active reports what was found
// instead of failing silently.
func (a *Assistant) toolSuspendLines(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	outcome := &ToolOutcome{Tool: "suspend_lines"}

	if len(args.LineIdentifiers) == 0 {
		candidates, err := a.lineOps.LinesForOperation(ctx, accountID, models.LineOpSuspend)
		if err != nil {
			return nil, err
		}

		switch len(candidates) {
		case 0:
			outcome.Message = "No active lines found to suspend"
			return outcome, nil
		case 1:
			result, err := a.lineOps.Apply(ctx, candidates, models.LineOpSuspend)
			if err != nil {
				return nil, err
			}
			outcome.Success = true
			outcome.AutoApplied = true
			outcome.BulkResult = result
			return outcome, nil
		default:
			outcome.NeedsClarification = true
			outcome.Candidates = candidates
			return outcome, nil
		}
	}

	allLines, err := a.lineOps.LinesWithStatus(ctx, accountID, "")
	if err != nil {
		return nil, err
	}

	resolved := ResolveLines(allLines, args.LineIdentifiers)
	if len(resolved) == 0 {
		outcome.Message = a.noMatchMessage(ctx, accountID, args.LineIdentifiers, "")
		return outcome, nil
	}
	if len(resolved) > 1 {
		outcome.NeedsClarification = true
		outcome.Candidates = resolved
		outcome.Message = fmt.Sprintf("Multiple lines found matching '%s'. Please be more specific about which line to suspend.",
			strings.Join(args.LineIdentifiers, ", "))
		return outcome, nil
	}

	var active []*models.Line
	for _, line := range resolved {
		if line.Status == models.LineStatusActive {
			active = append(active, line)
		}
	}
	if len(active) == 0 {
		outcome.Message = fmt.Sprintf("No active lines found to suspend. Found lines with statuses: %s",
			statusBreakdown(resolved))
		return outcome, nil
	}

	result, err := a.lineOps.Apply(ctx, active, models.LineOpSuspend)
	if err != nil {
		return nil, err
	}
	outcome.Success = true
	outcome.BulkResult = result
	return outcome, nil
}

// statusBreakdown groups line names by their current status, e.g.
// "SUSPENDED (Line 2), CANCELLED (Line 3)".
func statusBreakdown(lines []*models.Line) string {
	groups := make(map[models.LineStatus][]string)
	for _, line := range lines {
		groups[line.Status] = append(groups[line.Status], line.LineName)
	}

	var parts []string
	for _, status := range []models.LineStatus{models.LineStatusActive, models.LineStatusSuspended, models.LineStatusCancelled} {
		if names, ok := groups[status]; ok {
			parts = append(parts, fmt.Sprintf("%s (%s)", status, strings.Join(names, ", ")))
		}
	}
	return strings.Join(parts, ", ")
}

func (a *Assistant) toolRestoreLines(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	return a.bulkTool(ctx, "restore_lines", accountID, models.LineOpRestore, args.LineIdentifiers,
		"No suspended lines found to restore")
}

func (a *Assistant) toolReactivateLines(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	return a.bulkTool(ctx, "reactivate_cancelled_lines", accountID, models.LineOpReactivate, args.LineIdentifiers,
		"No cancelled lines found to reactivate")
}

func (a *Assistant) bulkTool(ctx context.Context, tool string, accountID primitive.ObjectID, op models.LineOperation, identifiers []string, emptyMsg string) (*ToolOutcome, error) {
	outcome := &ToolOutcome{Tool: tool}

	candidates, err := a.lineOps.LinesForOperation(ctx, accountID, op)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		outcome.Message = emptyMsg
		return outcome, nil
	}

	resolved := ResolveLines(candidates, identifiers)
	if len(resolved) == 0 {
		eligible, _ := op.EligibleStatus()
		outcome.Message = a.noMatchMessage(ctx, accountID, identifiers, eligible)
		return outcome, nil
	}

	result, err := a.lineOps.Apply(ctx, resolved, op)
	if err != nil {
		return nil, err
	}
	outcome.Success = true
	outcome.BulkResult = result
	return outcome, nil
}

func (a *Assistant) toolAddLine(_ context.Context, _ primitive.ObjectID, _ toolArgs) (*ToolOutcome, error) {
	return &ToolOutcome{
		Tool:         "add_line_to_account",
		Success:      true,
		TriggerModal: "add_line",
	}, nil
}

func (a *Assistant) toolMirrorLine(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	return a.modalLineTool(ctx, "mirror_line", accountID, args.LineIdentifier)
}

func (a *Assistant) toolUpgradeLine(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error) {
	return a.modalLineTool(ctx, "upgrade_line", accountID, args.LineIdentifier)
}

// modalLineTool resolves a single line reference and hands it to the UI as a
// modal payload. Ambiguity asks the caller to narrow it down.
func (a *Assistant) modalLineTool(ctx context.Context, tool string, accountID primitive.ObjectID, identifier string) (*ToolOutcome, error) {
	outcome := &ToolOutcome{Tool: tool}

	lines, err := a.lineOps.lines.FindByAccount(ctx, accountID, "")
	if err != nil {
		return nil, err
	}

	var identifiers []string
	if strings.TrimSpace(identifier) != "" {
		identifiers = []string{identifier}
	}

	resolved := ResolveLines(lines, identifiers)
	switch {
	case len(resolved) == 0:
		outcome.Message = a.noMatchMessage(ctx, accountID, identifiers, "")
	case len(resolved) > 1:
		outcome.NeedsClarification = true
		outcome.Candidates = resolved
	default:
		outcome.Success = true
		outcome.TriggerModal = tool
		outcome.ModalLine = resolved[0]
	}

	return outcome, nil
}

// noMatchMessage builds the failure text listing what the caller could have
// referenced instead.
func (a *Assistant) noMatchMessage(ctx context.Context, accountID primitive.ObjectID, identifiers []string, status models.LineStatus) string {
	lines, err := a.lineOps.lines.FindByAccount(ctx, accountID, status)
	if err != nil || len(lines) == 0 {
		return fmt.Sprintf("No lines found matching: %s", strings.Join(identifiers, ", "))
	}

	available := make([]string, 0, len(lines))
	for _, line := range lines {
		available = append(available, fmt.Sprintf("%s (%s)", line.LineName, line.EmployeeName))
	}

	return fmt.Sprintf("No lines found matching: %s. Available lines: %s",
		strings.Join(identifiers, ", "), strings.Join(available, ", "))
}
