package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"zhujian/internal/usecase/analytics"
)

// Fixed-structure answers rendered straight from aggregates, no model.

func progressAnswer(building *string, progress []analytics.BuildingProgress) string {
	var lines []string
	if building != nil {
		lines = append(lines, fmt.Sprintf("%s工序进度（按已落库验收记录推算）：", *building))
	} else {
		lines = append(lines, "项目工序进度（每栋：工序→到几层，按已落库验收记录推算）：")
	}

	if len(progress) == 0 {
		lines = append(lines, "- 暂无可用的楼栋/楼层数据（请确保部位包含“1栋6层”且已录入验收）。")
	} else {
		for _, b := range progress {
			if len(b.Processes) == 0 {
				continue
			}
			segs := make([]string, 0, len(b.Processes))
			for _, p := range b.Processes {
				if p.Status != "" && p.Status != "合格" {
					segs = append(segs, fmt.Sprintf("%s到%d层（%s）", p.Process, p.MaxFloor, p.Status))
				} else {
					segs = append(segs, fmt.Sprintf("%s到%d层", p.Process, p.MaxFloor))
				}
			}
			lines = append(lines, fmt.Sprintf("- %s：%s", b.Building, strings.Join(segs, "；")))
		}
	}

	lines = append(lines, "\n提示：统计口径=同一工序在该楼栋出现过的最高楼层；楼栋/楼层解析依赖部位格式“1栋6层/区域”。")
	return strings.Join(lines, "\n")
}

func issuesAnswer(intent string, scope analytics.Scope, cats []analytics.IssueCategory) string {
	var scopeParts []string
	if scope.Building != nil {
		scopeParts = append(scopeParts, *scope.Building)
	}
	if scope.Floor != nil {
		scopeParts = append(scopeParts, fmt.Sprintf("%d层", *scope.Floor))
	}
	scopeText := strings.Join(scopeParts, "，")

	head := "巡检问题类型排行"
	if intent == IntentIssuesDetail {
		head = "巡检问题明细（按类型汇总+示例）"
	}
	if scopeText != "" {
		head += "（" + scopeText + "）"
	}
	lines := []string{head + "："}

	if len(cats) == 0 {
		lines = append(lines, "- 暂无可统计的问题数据（可能未录入巡检，或楼栋/楼层未解析）。")
	} else {
		for i, c := range cats {
			lines = append(lines, fmt.Sprintf("%d) %s：%d条（未闭环%d，严重%d）", i+1, c.Category, c.Total, c.Open, c.Severe))
			if intent == IntentIssuesDetail {
				for _, sm := range c.Samples {
					lines = append(lines, fmt.Sprintf("   - 例：%s｜%s（%s，%s）", sm.Where, sm.Desc, sm.Status, sm.Severity))
				}
			}
		}
	}

	if intent == IntentIssuesTop {
		lines = append(lines, "\n你可以继续问：“具体什么问题？”我会把每类的示例条目列出来。")
	}
	return strings.Join(lines, "\n")
}

func formatDays(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func focusAnswer(pack analytics.FocusPack) string {
	w := pack.Meta.Window
	m := pack.Metrics
	closure := pack.Closure
	dq := pack.DataQuality

	var lines []string
	lines = append(lines, fmt.Sprintf("【时间窗】近%d天（%s ~ %s）", w.TimeRangeDays, w.Start, w.End))

	lines = append(lines, "【总体结论】")
	lines = append(lines, fmt.Sprintf("- 未闭环巡检：%d 条（严重 %d，逾期 %d）", m.IssuesOpen, m.IssuesOpenSevere, m.IssuesOpenOverdue))
	lines = append(lines, fmt.Sprintf("- 验收分项：不合格 %d，甩项 %d", m.AcceptanceUnqualifiedItems, m.AcceptancePendingItems))

	lines = append(lines, "【Top关注点（确定性生成）】")
	if len(pack.TopFocus) == 0 {
		lines = append(lines, "- 当前时间窗内没有足够的数据生成关注点。")
	} else {
		for i, item := range pack.TopFocus {
			lines = append(lines, fmt.Sprintf("%d) %s（风险评分 %d）", i+1, item.Title, item.Score))
			ev := item.Evidence
			lines = append(lines, fmt.Sprintf(
				"   - 证据：open=%d，severe=%d，overdue=%d，unqItems=%d，penItems=%d",
				ev.IssuesOpen, ev.IssuesOpenSevere, ev.IssuesOpenOverdue,
				ev.AcceptanceUnqualifiedItems, ev.AcceptancePendingItems,
			))
		}
	}

	lines = append(lines, "【闭环指标】")
	lines = append(lines, fmt.Sprintf(
		"- 巡检关闭：%d 次，平均 %s 天，中位数 %s 天",
		closure.IssueCloseCount, formatDays(closure.IssueCloseDaysAvg), formatDays(closure.IssueCloseDaysMedian),
	))
	lines = append(lines, fmt.Sprintf(
		"- 验收复验：%d 次，平均 %s 天，中位数 %s 天",
		closure.AcceptanceVerifyCount, formatDays(closure.AcceptanceVerifyDaysAvg), formatDays(closure.AcceptanceVerifyDaysMedian),
	))

	lines = append(lines, "【数据质量（会影响统计与AI结论）】")
	lines = append(lines, fmt.Sprintf(
		"- 未解析部位：验收 %d 条，巡检 %d 条",
		dq.AcceptanceMissingBuilding, dq.IssuesMissingBuilding,
	))
	lines = append(lines, fmt.Sprintf(
		"- 缺失闭环动作：已关闭巡检但无 close 动作 %d 条；验收非甩项但无 verify 动作 %d 条",
		dq.ClosedIssuesWithoutCloseAction, dq.AcceptanceWithoutVerifyAction,
	))

	lines = append(lines, "【下一步动作（只基于 Focus Pack 字段）】")
	lines = append(lines, "- 先盯风险评分最高的楼栋/范围，优先清理：严重 + 逾期 + 不合格分项。")
	lines = append(lines, "- 对未解析部位的记录补齐“1栋6层/区域”格式，避免落在“未解析”影响分楼栋统计。")
	lines = append(lines, "- 复验/关闭请走整改闭环动作流（verify/close），否则闭环时长无法统计。")

	return strings.Join(lines, "\n")
}

var answerBuilding = regexp.MustCompile(`(\d+)\s*(?:栋|楼|#)`)

// ruleBasedAnswer composes a local answer from facts when the model is
// unavailable, timed out, or not configured.
func ruleBasedAnswer(query string, facts analytics.PlanFacts) string {
	q := query

	switch {
	case strings.Contains(q, "不合格") && strings.Contains(q, "验收"):
		return fmt.Sprintf("当前验收不合格 %d 条（合格 %d，甩项 %d）。",
			facts.AcceptanceUnqualified, facts.AcceptanceQualified, facts.AcceptancePending)

	case strings.Contains(q, "巡检") && containsAny(q, "多少", "几条", "数量"):
		return fmt.Sprintf("当前巡检问题共 %d 条，其中未闭环(open) %d 条。",
			facts.IssuesTotal, facts.IssuesOpen)

	case strings.Contains(q, "责任单位") || strings.Contains(q, "谁"):
		if len(facts.TopResponsibleUnits) > 0 {
			head := facts.TopResponsibleUnits[0]
			return fmt.Sprintf("未闭环问题最多的责任单位是 %s（%d 条）。", head.ResponsibleUnit, head.Count)
		}
		return "当前没有可统计的责任单位分布。"
	}

	var targetBuilding *string
	if m := answerBuilding.FindStringSubmatch(strings.ReplaceAll(q, " ", "")); m != nil {
		b := m[1] + "栋"
		targetBuilding = &b
	}

	switch {
	case containsAny(q, "解释", "怎么理解", "含义"):
		return strings.Join([]string{
			"说明：我基于本项目已写入的验收/巡检数据进行汇总。",
			"- “验收分项”：按分项(item/item_code)去重后统计，并按最差结果归类（不合格>甩项>合格）。",
			"- “巡检未闭环”：status=open 的问题数。",
			"- “未解析”楼栋：说明该条记录的 region_text/building_no 无法解析到楼栋，建议按“1栋6层/区域”规范填写。",
		}, "\n")

	case containsAny(q, "为什么", "原因", "归因", "分析", "风险", "建议", "怎么改", "怎么做"):
		lines := []string{"分析与建议（基于现有事实）："}
		if len(facts.TopResponsibleUnits) > 0 {
			head := facts.TopResponsibleUnits[0]
			lines = append(lines, fmt.Sprintf("- 当前未闭环问题主要集中在责任单位：%s（%d 条）。", head.ResponsibleUnit, head.Count))
		}
		if len(facts.RecentUnqualified) > 0 {
			r := facts.RecentUnqualified[0]
			remark := "无"
			if r.Remark != nil && strings.TrimSpace(*r.Remark) != "" {
				remark = *r.Remark
			}
			lines = append(lines, fmt.Sprintf("- 最近一次不合格验收：%s / %s / %s（备注：%s）。",
				r.RegionText, strOr(r.Item, "-"), strOr(r.Indicator, "-"), remark))
		}
		if len(facts.RecentOpenIssues) > 0 {
			i := facts.RecentOpenIssues[0]
			lines = append(lines, fmt.Sprintf("- 最近一条未闭环巡检：%s（责任单位：%s）。",
				i.RegionText, strOr(i.ResponsibleUnit, "未填写")))
		}
		lines = append(lines, "- 建议：优先闭环 open 问题；对不合格分项复查并补充照片/整改记录；统一位置填写以提升楼栋/楼层统计质量。")
		return strings.Join(lines, "\n")

	case containsAny(q, "进展", "进度", "每栋", "各栋", "楼栋", "几栋"):
		var scoped []analytics.BuildingFacts
		for _, b := range facts.ByBuilding {
			if targetBuilding != nil && b.Building != *targetBuilding {
				continue
			}
			scoped = append(scoped, b)
		}

		var lines []string
		if targetBuilding != nil {
			lines = append(lines, fmt.Sprintf("%s进展（基于已落库数据）：", *targetBuilding))
		} else {
			lines = append(lines, "项目进展（按楼栋汇总）：")
		}
		switch {
		case len(scoped) > 0:
			for _, b := range scoped {
				lines = append(lines, fmt.Sprintf(
					"- %s：验收%d（不合格%d，合格%d，甩项%d）；巡检%d（未闭环%d）",
					b.Building, b.AcceptanceTotal, b.AcceptanceUnqualified, b.AcceptanceQualified,
					b.AcceptancePending, b.IssuesTotal, b.IssuesOpen,
				))
			}
		case targetBuilding != nil:
			lines = append(lines, "- 暂无该楼栋的数据（可能楼栋未解析或尚未录入）。")
		default:
			lines = append(lines, "- 暂无可按楼栋汇总的数据（可能还没有写入 building_no）。")
		}
		return strings.Join(lines, "\n")
	}

	return "我已读取本项目的验收与巡检汇总数据。" +
		"你可以更自由地问：“项目进展如何？”、“每栋情况总结并解释原因？”、“为什么巡检未闭环这么多？”、“给出风险点和整改建议”。"
}

func strOr(p *string, fallback string) string {
	if p != nil {
		if v := strings.TrimSpace(*p); v != "" {
			return v
		}
	}
	return fallback
}
