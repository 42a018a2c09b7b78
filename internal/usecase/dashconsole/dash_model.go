package dashconsole

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zhujian/internal/usecase/analytics"
	"zhujian/internal/usecase/records"
)

const (
	viewSummary  = "summary"
	viewProgress = "progress"
	viewFocus    = "focus"

	maxShownRecent    = 4
	maxShownBuildings = 8
)

type Options struct {
	ProjectName     string
	Days            int
	RefreshInterval time.Duration
}

type dashModel struct {
	ctx       context.Context
	records   *records.Service
	analytics *analytics.Service

	projectName     string
	projectID       uint64
	days            int
	refreshInterval time.Duration

	view string

	summary     analytics.Summary
	hasSummary  bool
	progress    []analytics.BuildingProgress
	pack        analytics.FocusPack
	hasPack     bool
	status      string
	refreshedAt time.Time
}

type projectResolvedMsg struct {
	projectID uint64
	err       error
}

type overviewLoadedMsg struct {
	summary  analytics.Summary
	progress []analytics.BuildingProgress
	err      error
}

type focusLoadedMsg struct {
	pack analytics.FocusPack
	err  error
}

type tickMsg struct{}

func NewDashModel(ctx context.Context, recordsSvc *records.Service, analyticsSvc *analytics.Service, options Options) tea.Model {
	projectName := strings.TrimSpace(options.ProjectName)
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &dashModel{
		ctx:             ctx,
		records:         recordsSvc,
		analytics:       analyticsSvc,
		projectName:     projectName,
		days:            options.Days,
		refreshInterval: interval,
		view:            viewSummary,
		status:          "初始化中",
	}
}

func (m *dashModel) Init() tea.Cmd {
	return tea.Batch(m.resolveProjectCmd(), m.tickCmd())
}

func (m *dashModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		if m.projectID == 0 {
			return m, tea.Batch(m.resolveProjectCmd(), m.tickCmd())
		}
		return m, tea.Batch(m.loadOverviewCmd(), m.tickCmd())
	case projectResolvedMsg:
		if msg.err != nil {
			m.status = "项目解析失败: " + msg.err.Error()
			return m, nil
		}
		m.projectID = msg.projectID
		m.status = fmt.Sprintf("项目就绪 project_id=%d", m.projectID)
		return m, m.loadOverviewCmd()
	case overviewLoadedMsg:
		if msg.err != nil {
			m.status = "刷新失败: " + msg.err.Error()
			return m, nil
		}
		m.summary = msg.summary
		m.hasSummary = true
		m.progress = msg.progress
		m.refreshedAt = time.Now()
		m.status = "已刷新"
		return m, nil
	case focusLoadedMsg:
		if msg.err != nil {
			m.status = "关注点生成失败: " + msg.err.Error()
			return m, nil
		}
		m.pack = msg.pack
		m.hasPack = true
		m.view = viewFocus
		m.status = "关注点已生成"
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "手动刷新中"
			return m, m.loadOverviewCmd()
		case "tab":
			m.view = nextView(m.view)
			return m, nil
		case "s":
			m.view = viewSummary
			return m, nil
		case "p":
			m.view = viewProgress
			return m, nil
		case "f":
			m.status = "生成关注点中..."
			return m, m.loadFocusCmd()
		}
	}
	return m, nil
}

func nextView(current string) string {
	switch current {
	case viewSummary:
		return viewProgress
	case viewProgress:
		return viewFocus
	default:
		return viewSummary
	}
}

func (m *dashModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("质量驾驶舱"))
	builder.WriteString("\n")
	refreshed := "-"
	if !m.refreshedAt.IsZero() {
		refreshed = m.refreshedAt.Format("15:04:05")
	}
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"project=%s view=%s refresh=%s last=%s",
		firstNonEmpty(m.projectName, records.DefaultProjectName),
		m.view,
		m.refreshInterval,
		refreshed,
	)))
	builder.WriteString("\n\n")

	switch m.view {
	case viewProgress:
		m.renderProgress(&builder, sectionStyle, dimStyle)
	case viewFocus:
		m.renderFocus(&builder, sectionStyle, dimStyle, warnStyle)
	default:
		m.renderSummary(&builder, sectionStyle, dimStyle, warnStyle)
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")
	builder.WriteString(dimStyle.Render("Keys: tab 切换视图  s 汇总  p 进度  f 关注点  g 刷新  q 退出"))
	return builder.String()
}

func (m *dashModel) renderSummary(builder *strings.Builder, sectionStyle, dimStyle, warnStyle lipgloss.Style) {
	builder.WriteString(sectionStyle.Render("验收分项"))
	builder.WriteString("\n")
	if !m.hasSummary {
		builder.WriteString(dimStyle.Render("- 加载中"))
		builder.WriteString("\n\n")
		return
	}
	s := m.summary
	builder.WriteString(fmt.Sprintf("- 共 %d：合格 %d / 不合格 %d / 甩项 %d\n\n", s.AcceptanceTotal, s.AcceptanceQualified, s.AcceptanceUnqualified, s.AcceptancePending))

	builder.WriteString(sectionStyle.Render("巡检问题"))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("- 共 %d：未闭环 %d / 已闭环 %d\n", s.IssuesTotal, s.IssuesOpen, s.IssuesClosed))
	if len(s.TopResponsibleUnits) > 0 {
		head := s.TopResponsibleUnits[0]
		builder.WriteString(fmt.Sprintf("- 未闭环最多：%s（%d 条）\n", head.ResponsibleUnit, head.Count))
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("最近动态"))
	builder.WriteString("\n")
	if len(s.RecentUnqualified) == 0 && len(s.RecentOpenIssues) == 0 {
		builder.WriteString(dimStyle.Render("- 暂无"))
		builder.WriteString("\n")
	}
	for i, rec := range s.RecentUnqualified {
		if i == maxShownRecent {
			break
		}
		builder.WriteString(warnStyle.Render(fmt.Sprintf("- 不合格验收：%s %s", rec.RegionText, strOr(rec.Item))))
		builder.WriteString("\n")
	}
	for i, issue := range s.RecentOpenIssues {
		if i == maxShownRecent {
			break
		}
		builder.WriteString(fmt.Sprintf("- 未闭环巡检：%s %s\n", issue.RegionText, issue.Description))
	}
	builder.WriteString("\n")
}

func (m *dashModel) renderProgress(builder *strings.Builder, sectionStyle, dimStyle lipgloss.Style) {
	builder.WriteString(sectionStyle.Render("工序进度（每栋：工序→到几层）"))
	builder.WriteString("\n")
	if len(m.progress) == 0 {
		builder.WriteString(dimStyle.Render("- 暂无楼栋/楼层数据"))
		builder.WriteString("\n\n")
		return
	}
	for i, b := range m.progress {
		if i == maxShownBuildings {
			break
		}
		segs := make([]string, 0, len(b.Processes))
		for _, p := range b.Processes {
			if p.Status != "" && p.Status != "合格" {
				segs = append(segs, fmt.Sprintf("%s到%d层（%s）", p.Process, p.MaxFloor, p.Status))
			} else {
				segs = append(segs, fmt.Sprintf("%s到%d层", p.Process, p.MaxFloor))
			}
		}
		builder.WriteString(fmt.Sprintf("- %s：%s\n", b.Building, strings.Join(segs, "；")))
	}
	builder.WriteString("\n")
}

func (m *dashModel) renderFocus(builder *strings.Builder, sectionStyle, dimStyle, warnStyle lipgloss.Style) {
	builder.WriteString(sectionStyle.Render("重点关注（Focus Pack）"))
	builder.WriteString("\n")
	if !m.hasPack {
		builder.WriteString(dimStyle.Render("- 按 f 生成"))
		builder.WriteString("\n\n")
		return
	}
	w := m.pack.Meta.Window
	builder.WriteString(dimStyle.Render(fmt.Sprintf("窗口：近%d天（%s ~ %s）", w.TimeRangeDays, w.Start, w.End)))
	builder.WriteString("\n")
	metrics := m.pack.Metrics
	builder.WriteString(fmt.Sprintf("- 未闭环 %d（严重 %d，逾期 %d）；不合格分项 %d，甩项 %d\n",
		metrics.IssuesOpen, metrics.IssuesOpenSevere, metrics.IssuesOpenOverdue,
		metrics.AcceptanceUnqualifiedItems, metrics.AcceptancePendingItems))
	if len(m.pack.TopFocus) == 0 {
		builder.WriteString(dimStyle.Render("- 时间窗内数据不足"))
		builder.WriteString("\n")
	}
	for i, item := range m.pack.TopFocus {
		builder.WriteString(warnStyle.Render(fmt.Sprintf("%d) %s（风险评分 %d）", i+1, item.Title, item.Score)))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

func (m *dashModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *dashModel) resolveProjectCmd() tea.Cmd {
	return func() tea.Msg {
		projectID, err := m.records.ResolveProjectID(m.ctx, 0, m.projectName)
		return projectResolvedMsg{projectID: projectID, err: err}
	}
}

func (m *dashModel) loadOverviewCmd() tea.Cmd {
	if m.projectID == 0 {
		return nil
	}
	return func() tea.Msg {
		summary, err := m.analytics.Summary(m.ctx, m.projectID, 5)
		if err != nil {
			return overviewLoadedMsg{err: err}
		}
		progress, err := m.analytics.ProgressByBuilding(m.ctx, m.projectID, nil)
		if err != nil {
			return overviewLoadedMsg{err: err}
		}
		return overviewLoadedMsg{summary: summary, progress: progress}
	}
}

func (m *dashModel) loadFocusCmd() tea.Cmd {
	if m.projectID == 0 {
		return nil
	}
	return func() tea.Msg {
		pack, err := m.analytics.BuildFocusPack(m.ctx, analytics.FocusInput{
			ProjectID:   m.projectID,
			Days:        m.days,
			RunBackfill: true,
		})
		return focusLoadedMsg{pack: pack, err: err}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
