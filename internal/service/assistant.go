package service

import (
	"context"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	historyWindow = 10

	notConfiguredReply = "The AI assistant is not configured. Please set an OpenAI API key to enable chat."
	errorReply         = "Sorry, I ran into a problem handling that request. Please try again."
	unknownToolReply   = "I'm not able to help with that request."

	systemPrompt = `You are a helpful T-Mobile business account assistant. You help account managers manage their phone lines and services.

Available services:
- 1-Day International Pass: $1.00 (512MB data, 1 day)
- 10-Day International Pass: $35.00 (5GB data, 10 days)
- 30-Day International Pass: $50.00 (15GB data, 30 days)

Rules:
- When the user wants to act on a line but does not say which one, and the account has more than one candidate line, ask which line they mean instead of guessing.
- Only active lines can be suspended. Only suspended lines can be restored. Only cancelled lines can be reactivated.
- When the user asks to add, mirror or upgrade a line, call the matching function so the form opens for them.
- Keep answers short and friendly. Never invent line names or phone numbers.`
)

type toolFunc func(ctx context.Context, accountID primitive.ObjectID, args toolArgs) (*ToolOutcome, error)

// Assistant runs one chat turn: model call, optional tool dispatch, reply
// formatting. The tool table is built once at construction.
type Assistant struct {
	model         ModelClient
	modelName     string
	accounts      *AccountService
	lineOps       *LineOpsService
	subscriptions *SubscriptionService
	metrics       *MetricsCollector
	logger        *logrus.Logger
	tools         map[string]toolFunc
}

func NewAssistant(model ModelClient, modelName string, accounts *AccountService, lineOps *LineOpsService, subscriptions *SubscriptionService, metrics *MetricsCollector, logger *logrus.Logger) *Assistant {
	a := &Assistant{
		model:         model,
		modelName:     modelName,
		accounts:      accounts,
		lineOps:       lineOps,
		subscriptions: subscriptions,
		metrics:       metrics,
		logger:        logger,
	}

	a.tools = map[string]toolFunc{
		"add_service_to_lines":       a.toolAddService,
		"list_account_lines":         a.toolListLines,
		"get_account_summary":        a.toolAccountSummary,
		"suspend_lines":              a.toolSuspendLines,
		"restore_lines":              a.toolRestoreLines,
		"reactivate_cancelled_lines": a.toolReactivateLines,
		"add_line_to_account":        a.toolAddLine,
		"mirror_line":                a.toolMirrorLine,
		"upgrade_line":               a.toolUpgradeLine,
	}

	return a
}

// ProcessMessage handles one user turn. Failures never surface as errors to
// the HTTP layer; they become a terminal text reply instead.
func (a *Assistant) ProcessMessage(ctx context.Context, accountID primitive.ObjectID, message string, history []models.ChatMessage) *models.ChatReply {
	if !a.model.Configured() {
		a.recordChat("not_configured")
		return &models.ChatReply{Response: notConfiguredReply}
	}

	completion, err := a.callModel(ctx, message, history)
	if err != nil {
		a.logger.WithError(err).Error("Model call failed")
		a.recordChat("model_error")
		return &models.ChatReply{Response: errorReply}
	}
	if len(completion.Choices) == 0 {
		a.logger.Error("Model returned no choices")
		a.recordChat("model_error")
		return &models.ChatReply{Response: errorReply}
	}

	choice := completion.Choices[0].Message
	if choice.FunctionCall == nil {
		a.recordChat("text")
		return &models.ChatReply{Response: choice.Content}
	}

	return a.dispatch(ctx, accountID, choice.FunctionCall)
}

func (a *Assistant) callModel(ctx context.Context, message string, history []models.ChatMessage) (*ChatCompletionResponse, error) {
	messages := []CompletionMessage{{Role: "system", Content: systemPrompt}}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		messages = append(messages, CompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, CompletionMessage{Role: "user", Content: message})

	start := time.Now()
	completion, err := a.model.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:        a.modelName,
		Messages:     messages,
		Functions:    functionDefs(),
		FunctionCall: "auto",
		Temperature:  0.3,
	})
	if a.metrics != nil {
		a.metrics.ObserveModelCall(a.modelName, time.Since(start).Seconds())
	}

	return completion, err
}

func (a *Assistant) dispatch(ctx context.Context, accountID primitive.ObjectID, call *FunctionCall) *models.ChatReply {
	tool, ok := a.tools[call.Name]
	if !ok {
		a.logger.WithField("tool", call.Name).Warn("Model requested unknown tool")
		a.recordChat("unknown_tool")
		return &models.ChatReply{Response: unknownToolReply}
	}

	args, err := decodeToolArgs(call.Arguments)
	if err != nil {
		a.logger.WithError(err).WithField("tool", call.Name).Error("Bad tool arguments")
		a.recordTool(call.Name, "bad_args")
		a.recordChat("error")
		return &models.ChatReply{Response: errorReply}
	}

	outcome, err := tool(ctx, accountID, args)
	if err != nil {
		a.logger.WithError(err).WithField("tool", call.Name).Error("Tool execution failed")
		a.recordTool(call.Name, "error")
		a.recordChat("error")
		return &models.ChatReply{Response: errorReply}
	}

	a.recordTool(call.Name, toolResultLabel(outcome))
	a.recordChat("tool")
	return FormatOutcome(outcome)
}

func toolResultLabel(outcome *ToolOutcome) string {
	switch {
	case outcome.NeedsClarification:
		return "clarification"
	case outcome.Success:
		return "success"
	default:
		return "failure"
	}
}

func (a *Assistant) recordChat(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordChatRequest(outcome)
	}
}

func (a *Assistant) recordTool(tool, result string) {
	if a.metrics != nil {
		a.metrics.RecordToolCall(tool, result)
	}
}

func functionDefs() []FunctionDef {
	lineIdentifiers := map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Line names, phone numbers, employee names or employee numbers. Empty means all eligible lines.",
	}
	lineIdentifier := map[string]interface{}{
		"type":        "string",
		"description": "A line name, phone number, employee name or employee number.",
	}

	return []FunctionDef{
		{
			Name:        "add_service_to_lines",
			Description: "Add an international pass or other catalog service to one or more lines.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"service_type": map[string]interface{}{
						"type":        "string",
						"description": "Which service to add, e.g. 1_day, 10_day, 30_day or a service name.",
					},
					"line_identifiers": lineIdentifiers,
				},
				"required": []string{"service_type"},
			},
		},
		{
			Name:        "list_account_lines",
			Description: "List the lines on the account, optionally filtered by status.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"status_filter": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"ACTIVE", "SUSPENDED", "CANCELLED"},
						"description": "Only list lines in this status.",
					},
				},
			},
		},
		{
			Name:        "get_account_summary",
			Description: "Get a summary of the account: owner, status and line counts.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "suspend_lines",
			Description: "Suspend one or more active lines.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line_identifiers": lineIdentifiers,
				},
			},
		},
		{
			Name:        "restore_lines",
			Description: "Restore one or more suspended lines to active.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line_identifiers": lineIdentifiers,
				},
			},
		},
		{
			Name:        "reactivate_cancelled_lines",
			Description: "Reactivate one or more cancelled lines.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line_identifiers": lineIdentifiers,
				},
			},
		},
		{
			Name:        "add_line_to_account",
			Description: "Open the form to add a brand new line to the account.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "mirror_line",
			Description: "Open the form to create a new line copying an existing line's device and plan.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line_identifier": lineIdentifier,
				},
			},
		},
		{
			Name:        "upgrade_line",
			Description: "Open the form to upgrade an existing line's device or plan.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line_identifier": lineIdentifier,
				},
			},
		},
	}
}
