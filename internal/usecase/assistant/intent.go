package assistant

import (
	"regexp"
	"strings"

	"zhujian/internal/ports"
)

// Deterministic intents the router can answer without the model.
const (
	IntentProgress     = "progress"
	IntentIssuesTop    = "issues_top"
	IntentIssuesDetail = "issues_detail"
	IntentFocus        = "focus"
	IntentFallback     = "fallback"
	IntentUnknown      = "unknown"
)

var focusKeywords = []string{
	"关注", "关注点", "重点", "风险", "预警",
	"本周", "下周", "下一步", "要盯", "需要盯",
	"驾驶舱", "focus",
}

// IsFocusQuery gates the focus route on explicit keywords so the model
// cannot reroute arbitrary questions into the focus template.
func IsFocusQuery(query string) bool {
	s := strings.TrimSpace(query)
	if s == "" {
		return false
	}
	for _, k := range focusKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

var progressKeywords = []string{
	"进度", "进展", "干到", "做到", "到几层", "几层", "楼层进度", "工序",
}

var buildingFollowUp = regexp.MustCompile(`^(?:那|这个|再看下)?\s*\d+\s*(?:栋|楼|#)\s*(?:呢|怎么样|情况)?$`)

func containsAny(s string, keys ...string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// InferIntent routes tool-like questions deterministically. Follow-ups such
// as "1栋呢" inherit the intent from recent user turns.
func InferIntent(query string, history []ports.ChatMessage) string {
	s := strings.ReplaceAll(strings.TrimSpace(query), " ", "")
	if s == "" {
		return IntentUnknown
	}

	if containsAny(s, progressKeywords...) {
		if !containsAny(s, "问题", "缺陷", "巡检") {
			return IntentProgress
		}
	}

	if buildingFollowUp.MatchString(s) {
		last := strings.Join(lastUserUtterances(history, 6), "")
		if containsAny(last, "进度", "进展", "工序", "到几层", "楼栋") {
			return IntentProgress
		}
		if containsAny(last, "哪类问题", "问题多", "具体什么问题", "巡检", "缺陷") {
			return IntentIssuesDetail
		}
	}

	if containsAny(s, "哪类", "哪个类型", "类型", "问题多", "最多", "top", "排行") {
		if containsAny(s, "问题", "缺陷", "巡检") {
			return IntentIssuesTop
		}
	}

	if containsAny(s, "具体", "明细", "分别", "列出", "都有什么", "哪些问题", "什么问题") {
		if containsAny(s, "问题", "缺陷", "巡检") {
			return IntentIssuesDetail
		}
		last := strings.Join(lastUserUtterances(history, 4), "")
		if containsAny(last, "问题", "缺陷", "巡检", "未闭环") {
			return IntentIssuesDetail
		}
	}

	return IntentUnknown
}

func lastUserUtterances(history []ports.ChatMessage, n int) []string {
	var out []string
	start := len(history) - n*2
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	for i := len(recent) - 1; i >= 0 && len(out) < n; i-- {
		role := strings.ToLower(strings.TrimSpace(recent[i].Role))
		if role != "user" && role != "human" {
			continue
		}
		content := strings.TrimSpace(recent[i].Content)
		if content != "" {
			out = append(out, content)
		}
	}
	return out
}
