package assistant

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"zhujian/internal/errs"
	"zhujian/internal/ports"
	"zhujian/internal/usecase/analytics"
)

// PlanScope is the scope block the intent parser may fill.
type PlanScope struct {
	Building        string `json:"building,omitempty"`
	Floor           *int   `json:"floor,omitempty"`
	ResponsibleUnit string `json:"responsible_unit,omitempty"`
	TimeRangeDays   *int   `json:"time_range_days,omitempty"`
}

// Plan is the executable analysis plan extracted from a free-text question.
type Plan struct {
	Intent     string    `json:"intent"`
	Scope      PlanScope `json:"scope"`
	Dimensions []string  `json:"dimensions"`
	Style      string    `json:"style"`
	TopN       int       `json:"top_n"`
}

func (p *Plan) applyDefaults() {
	p.Intent = strings.ToLower(strings.TrimSpace(p.Intent))
	if strings.TrimSpace(p.Style) == "" {
		p.Style = "analysis"
	}
	if p.TopN <= 0 {
		p.TopN = 5
	}
}

func (p Plan) analyticsScope() analytics.Scope {
	var scope analytics.Scope
	if b := strings.TrimSpace(p.Scope.Building); b != "" {
		scope.Building = &b
	}
	scope.Floor = p.Scope.Floor
	if u := strings.TrimSpace(p.Scope.ResponsibleUnit); u != "" {
		scope.ResponsibleUnit = &u
	}
	return scope
}

var planSchemaJSON = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Plan{})
	raw, err := json.Marshal(schema)
	if err != nil {
		return `{"intent":"string","scope":{},"dimensions":[],"style":"analysis","top_n":5}`
	}
	return string(raw)
})

func planSystemPrompt() string {
	return "你是一个“意图解析器”，负责把用户的问题转换为可执行的分析计划(JSON)。" +
		"只输出 JSON，不要输出任何额外文字。" +
		"JSON Schema：" + planSchemaJSON() +
		"规则：" +
		"- 仅当用户问题包含：关注/关注点/重点/风险/预警/下一步/focus/驾驶舱 时，intent 才能为 'focus'；否则不要输出 focus。" +
		"- 如果用户问“1栋进展/1栋6层…”，scope.building/floor 必须填；" +
		"- 如果用户问“责任单位…”，scope.responsible_unit 或 dimensions 包含 'responsible_unit'；" +
		"- 如果用户提到“本周/近7天/近两周/近30天”，尽量给出 scope.time_range_days（7/14/30 等）；" +
		"- 如果用户未限定范围，scope 为空；" +
		"- style 默认 'analysis'；top_n 默认 5。"
}

type planContextTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// planCompletion asks the model to emit the plan JSON and returns the raw
// content. Invalid output surfaces at parse time so the caller falls back
// to the heuristic plan.
func (s *Service) planCompletion(ctx context.Context, query string, history []ports.ChatMessage) (string, error) {
	convo := make([]planContextTurn, 0, 8)
	start := len(history) - 8
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		convo = append(convo, planContextTurn{Role: role, Content: content})
	}
	convoJSON, err := json.Marshal(convo)
	if err != nil {
		return "", errs.Wrap(err, "marshal plan context")
	}

	userPrompt := "根据用户输入生成分析计划(JSON)。\n" +
		"用户问题：" + query + "\n" +
		"上下文（可选）：" + string(convoJSON)

	return s.chat.Complete(ctx, planSystemPrompt(),
		[]ports.ChatMessage{{Role: "user", Content: userPrompt}},
		ports.ChatOptions{Temperature: 0},
	)
}

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

func parsePlan(content string) (Plan, error) {
	t := strings.TrimSpace(content)
	t = fenceOpen.ReplaceAllString(t, "")
	t = strings.TrimSpace(fenceClose.ReplaceAllString(t, ""))

	var plan Plan
	if err := json.Unmarshal([]byte(t), &plan); err != nil {
		return Plan{}, errs.Wrap(err, "decode plan")
	}
	plan.applyDefaults()
	return plan, nil
}

// heuristicPlan is the no-model plan: keyword-gated focus, regex scope.
func heuristicPlan(query string) Plan {
	intent := IntentFallback
	if IsFocusQuery(query) {
		intent = IntentFocus
	}
	scope := ExtractBasicScope(query)
	plan := Plan{Intent: intent}
	if scope.Building != nil {
		plan.Scope.Building = *scope.Building
	}
	plan.Scope.Floor = scope.Floor
	plan.applyDefaults()
	return plan
}
