package assistant

import (
	"fmt"
	"strings"

	"zhujian/internal/usecase/analytics"
)

// answerSystemPrompt pins the output contract: short, Chinese, and every
// number copied from the facts view rather than invented.
const answerSystemPrompt = "你是项目质量数据助手。\n" +
	"只允许基于给定的 facts_view 回答，禁止编造数字。\n" +
	"强约束：总字数 <= 200；最多 6 行；不输出英文字段名（例如 acceptance_total 这类）。\n" +
	"输出格式固定（每行以短句为主）：\n" +
	"结论：1-2句\n" +
	"证据：2-3句（必须原样复制 facts_view.核心证据 或 facts_view.按楼栋进展 的句子）\n" +
	"下一步：1-2句（可执行）\n" +
	"证据不足就写：“证据不足：缺少XXX”，不要猜。"

// factsViewForLLM re-labels the fact document with human-readable Chinese
// keys so the model cannot leak raw field names into the answer.
func factsViewForLLM(query string, facts analytics.PlanFacts) map[string]any {
	severe := facts.IssuesBySeverity["严重"]
	if severe == 0 {
		severe = facts.IssuesBySeverity["severe"]
	}

	evidence := []string{
		fmt.Sprintf("验收分项：共%d，合格%d，不合格%d，甩项%d。",
			facts.AcceptanceTotal, facts.AcceptanceQualified, facts.AcceptanceUnqualified, facts.AcceptancePending),
		fmt.Sprintf("巡检问题：共%d，未闭环%d，已闭环%d，严重%d。",
			facts.IssuesTotal, facts.IssuesOpen, facts.IssuesClosed, severe),
	}
	if len(facts.TopResponsibleUnits) > 0 {
		head := facts.TopResponsibleUnits[0]
		unit := strings.TrimSpace(head.ResponsibleUnit)
		if unit == "" {
			unit = "未填写"
		}
		evidence = append(evidence, fmt.Sprintf("责任单位未闭环最多：%s（%d条）。", unit, head.Count))
	}

	buildingLines := make([]string, 0, 8)
	for _, b := range facts.ByBuilding {
		if len(buildingLines) == 8 {
			break
		}
		buildingLines = append(buildingLines, fmt.Sprintf(
			"%s：验收%d（不合格%d，合格%d，甩项%d）；巡检%d（未闭环%d）",
			b.Building, b.AcceptanceTotal, b.AcceptanceUnqualified, b.AcceptanceQualified,
			b.AcceptancePending, b.IssuesTotal, b.IssuesOpen,
		))
	}

	scopeText := ""
	if facts.Scope != nil {
		var parts []string
		if facts.Scope.Building != nil && strings.TrimSpace(*facts.Scope.Building) != "" {
			parts = append(parts, strings.TrimSpace(*facts.Scope.Building))
		}
		if facts.Scope.Floor != nil {
			parts = append(parts, fmt.Sprintf("%d层", *facts.Scope.Floor))
		}
		if facts.Scope.ResponsibleUnit != nil && strings.TrimSpace(*facts.Scope.ResponsibleUnit) != "" {
			parts = append(parts, "责任单位："+strings.TrimSpace(*facts.Scope.ResponsibleUnit))
		}
		scopeText = strings.Join(parts, "，")
	}

	return map[string]any{
		"问题":   query,
		"范围":   scopeText,
		"核心证据": evidence,
		"按楼栋进展": buildingLines,
		"提示": []string{
			"证据必须来自“核心证据/按楼栋进展”的原句，不要输出内部字段名或英文key。",
			"如果用户问“项目进展/各栋/楼栋”，优先用“按楼栋进展”回答。",
		},
	}
}
