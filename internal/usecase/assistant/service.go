package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/infrastructure/llm"
	"zhujian/internal/ports"
	"zhujian/internal/usecase/analytics"
	"zhujian/internal/usecase/backfill"
	"zhujian/internal/usecase/records"
)

var ErrEmptyQuery = errors.New("query is empty")

const (
	disclaimerTimeout     = "（大模型连接超时，已切换本地概览）\n"
	disclaimerUnavailable = "（大模型暂不可用，已切换本地概览）\n"

	maxHistoryTurns = 12
	maxErrorChars   = 200
)

// Service routes questions over inspection data: deterministic intents get
// template answers from aggregates, everything else goes through a model
// plan and a fact-grounded answer with a local fallback.
type Service struct {
	records   *records.Service
	analytics *analytics.Service
	backfill  *backfill.Service
	chat      ports.ChatCompleter
	pool      *llm.Pool

	planTimeout   time.Duration
	answerTimeout time.Duration
	backfillLimit int
}

func NewService(
	recordsSvc *records.Service,
	analyticsSvc *analytics.Service,
	backfillSvc *backfill.Service,
	chat ports.ChatCompleter,
	pool *llm.Pool,
	cfg config.Config,
) *Service {
	planTimeout := time.Duration(cfg.Assistant.PlanTimeoutMS) * time.Millisecond
	if planTimeout <= 0 {
		planTimeout = 1800 * time.Millisecond
	}
	answerTimeout := time.Duration(cfg.Assistant.AnswerTimeoutMS) * time.Millisecond
	if answerTimeout <= 0 {
		answerTimeout = 5500 * time.Millisecond
	}
	backfillLimit := cfg.Focus.BackfillLimit
	if backfillLimit <= 0 {
		backfillLimit = backfill.DefaultLimit
	}
	return &Service{
		records:       recordsSvc,
		analytics:     analyticsSvc,
		backfill:      backfillSvc,
		chat:          chat,
		pool:          pool,
		planTimeout:   planTimeout,
		answerTimeout: answerTimeout,
		backfillLimit: backfillLimit,
	}
}

type ChatInput struct {
	ProjectName string
	Query       string
	Messages    []ports.ChatMessage
}

type ToolMeta struct {
	Intent string                  `json:"intent"`
	Scope  analytics.ScopeSelector `json:"scope"`
}

type LLMMeta struct {
	Used         bool   `json:"used"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	PlanTimedOut bool   `json:"plan_timed_out,omitempty"`
	TimedOut     bool   `json:"timed_out,omitempty"`
	Fallback     string `json:"fallback,omitempty"`
	Error        string `json:"error,omitempty"`
}

type Meta struct {
	Route string    `json:"route"`
	Tool  *ToolMeta `json:"tool,omitempty"`
	LLM   LLMMeta   `json:"llm"`
}

type ChatOutput struct {
	Answer string `json:"answer"`
	Facts  any    `json:"facts"`
	Meta   Meta   `json:"meta"`
}

type planFactsPayload struct {
	analytics.PlanFacts
	Plan Plan `json:"plan"`
}

func (s *Service) Chat(ctx context.Context, input ChatInput) (ChatOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		if utterances := lastUserUtterances(input.Messages, 1); len(utterances) > 0 {
			query = utterances[0]
		}
	}
	if query == "" {
		return ChatOutput{}, ErrEmptyQuery
	}

	projectID, err := s.records.ResolveProjectID(ctx, 0, input.ProjectName)
	if err != nil {
		return ChatOutput{}, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "assistant"), slog.Uint64("project_id", projectID))

	// Best-effort: grouping quality depends on parsed building/floor.
	if _, err := s.backfill.Run(ctx, projectID, s.backfillLimit); err != nil {
		logging.Warn(logCtx, "pre-chat backfill failed", slog.Any("error", err))
	}

	meta := Meta{
		Route: "chat",
		LLM:   LLMMeta{Provider: "doubao", Model: s.chat.ModelName()},
	}

	intent := InferIntent(query, input.Messages)
	scope := ExtractBasicScope(query)

	switch intent {
	case IntentProgress:
		progress, err := s.analytics.ProgressByBuilding(ctx, projectID, scope.Building)
		if err != nil {
			return ChatOutput{}, err
		}
		meta.Tool = &ToolMeta{Intent: intent, Scope: scopeSelector(scope)}
		return ChatOutput{
			Answer: progressAnswer(scope.Building, progress),
			Facts:  map[string]any{"progress": progress},
			Meta:   meta,
		}, nil

	case IntentIssuesTop, IntentIssuesDetail:
		samples := 1
		if intent == IntentIssuesDetail {
			samples = 3
		}
		categories, err := s.analytics.TopIssueCategories(ctx, projectID, analytics.CategoryQuery{
			Building:   scope.Building,
			Floor:      scope.Floor,
			TopN:       5,
			SamplesPer: samples,
		})
		if err != nil {
			return ChatOutput{}, err
		}
		meta.Tool = &ToolMeta{Intent: intent, Scope: scopeSelector(scope)}
		return ChatOutput{
			Answer: issuesAnswer(intent, scope, categories),
			Facts:  map[string]any{"issue_categories": categories},
			Meta:   meta,
		}, nil
	}

	plan := s.resolvePlan(ctx, query, input.Messages, &meta)

	// Guardrail: the model must not reroute arbitrary questions into focus.
	focusByKeyword := IsFocusQuery(query)
	if !focusByKeyword && plan.Intent == IntentFocus {
		plan.Intent = IntentFallback
	}

	if focusByKeyword {
		days := 0
		if plan.Scope.TimeRangeDays != nil {
			days = *plan.Scope.TimeRangeDays
		}
		var building *string
		if b := strings.TrimSpace(plan.Scope.Building); b != "" {
			building = &b
		}
		// Backfill already ran at the top of this request.
		pack, err := s.analytics.BuildFocusPack(ctx, analytics.FocusInput{
			ProjectID: projectID,
			Days:      days,
			Building:  building,
		})
		if err != nil {
			return ChatOutput{}, err
		}
		meta.Route = "focus"
		return ChatOutput{
			Answer: focusAnswer(pack),
			Facts:  map[string]any{"focus_pack": pack, "plan": plan},
			Meta:   meta,
		}, nil
	}

	facts, err := s.analytics.FactsForPlan(ctx, projectID, plan.analyticsScope())
	if err != nil {
		return ChatOutput{}, err
	}
	payload := planFactsPayload{PlanFacts: facts, Plan: plan}

	if s.chat.Configured() {
		answer, call := s.pool.Do(ctx, s.answerTimeout, func(ctx context.Context) (string, error) {
			return s.answerCompletion(ctx, query, facts, input.Messages)
		})
		if answer != "" {
			meta.LLM.Used = true
			return ChatOutput{Answer: answer, Facts: payload, Meta: meta}, nil
		}
		if call.TimedOut {
			meta.LLM.TimedOut = true
			meta.LLM.Fallback = "local_timeout"
		} else if call.Err != nil {
			meta.LLM.Error = truncateError(call.Err)
			meta.LLM.Fallback = "local_error"
		}
	}

	answer := ruleBasedAnswer(query, facts)
	switch meta.LLM.Fallback {
	case "local_timeout":
		answer = disclaimerTimeout + answer
	case "local_error":
		answer = disclaimerUnavailable + answer
	}
	return ChatOutput{Answer: answer, Facts: payload, Meta: meta}, nil
}

// FocusDigest builds the focus pack for a project and renders the fixed
// digest text, for callers outside the chat flow.
func (s *Service) FocusDigest(ctx context.Context, projectName string, days int, building *string) (analytics.FocusPack, string, error) {
	projectID, err := s.records.ResolveProjectID(ctx, 0, projectName)
	if err != nil {
		return analytics.FocusPack{}, "", err
	}
	pack, err := s.analytics.BuildFocusPack(ctx, analytics.FocusInput{
		ProjectID:   projectID,
		Days:        days,
		Building:    building,
		RunBackfill: true,
	})
	if err != nil {
		return analytics.FocusPack{}, "", err
	}
	return pack, focusAnswer(pack), nil
}

// resolvePlan prefers the model plan within the plan timeout and falls back
// to the keyword heuristic.
func (s *Service) resolvePlan(ctx context.Context, query string, history []ports.ChatMessage, meta *Meta) Plan {
	if !s.chat.Configured() {
		return heuristicPlan(query)
	}

	content, call := s.pool.Do(ctx, s.planTimeout, func(ctx context.Context) (string, error) {
		return s.planCompletion(ctx, query, history)
	})
	if call.TimedOut {
		meta.LLM.PlanTimedOut = true
		return heuristicPlan(query)
	}
	if call.Err != nil || content == "" {
		return heuristicPlan(query)
	}
	plan, err := parsePlan(content)
	if err != nil {
		return heuristicPlan(query)
	}
	return plan
}

func (s *Service) answerCompletion(ctx context.Context, query string, facts analytics.PlanFacts, history []ports.ChatMessage) (string, error) {
	view := factsViewForLLM(query, facts)
	viewJSON, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	factsLine := "facts_view(JSON)：" + string(viewJSON)

	messages := make([]ports.ChatMessage, 0, maxHistoryTurns+1)
	start := len(history) - maxHistoryTurns
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		messages = append(messages, ports.ChatMessage{Role: normalizeRole(msg.Role), Content: content})
	}
	messages = append(messages, ports.ChatMessage{Role: "user", Content: factsLine})

	return s.chat.Complete(ctx, answerSystemPrompt+"\n"+factsLine, messages, ports.ChatOptions{
		Temperature: 0.2,
		MaxTokens:   512,
	})
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "ai":
		return "assistant"
	default:
		return "user"
	}
}

func scopeSelector(scope analytics.Scope) analytics.ScopeSelector {
	return analytics.ScopeSelector{
		Building:        scope.Building,
		Floor:           scope.Floor,
		ResponsibleUnit: scope.ResponsibleUnit,
	}
}

func truncateError(err error) string {
	msg := err.Error()
	if msg == "" {
		msg = "error"
	}
	runes := []rune(msg)
	if len(runes) > maxErrorChars {
		return string(runes[:maxErrorChars])
	}
	return msg
}
