package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
	"zhujian/internal/usecase/records"
)

type seedAcceptance struct {
	RegionCode    string `yaml:"region_code"`
	RegionText    string `yaml:"region_text"`
	Division      string `yaml:"division"`
	Subdivision   string `yaml:"subdivision"`
	Item          string `yaml:"item"`
	ItemCode      string `yaml:"item_code"`
	Indicator     string `yaml:"indicator"`
	IndicatorCode string `yaml:"indicator_code"`
	Result        string `yaml:"result"`
	Remark        string `yaml:"remark"`
	DaysAgo       int    `yaml:"days_ago"`
}

type seedIssue struct {
	RegionText        string `yaml:"region_text"`
	Division          string `yaml:"division"`
	Subdivision       string `yaml:"subdivision"`
	Item              string `yaml:"item"`
	Indicator         string `yaml:"indicator"`
	Description       string `yaml:"description"`
	Severity          string `yaml:"severity"`
	DeadlineDays      *int   `yaml:"deadline_days"`
	ResponsibleUnit   string `yaml:"responsible_unit"`
	ResponsiblePerson string `yaml:"responsible_person"`
	Status            string `yaml:"status"`
	DaysAgo           int    `yaml:"days_ago"`
}

type seedFixture struct {
	Project struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
	} `yaml:"project"`
	AcceptanceRecords []seedAcceptance `yaml:"acceptance_records"`
	IssueReports      []seedIssue      `yaml:"issue_reports"`
}

func defaultSeedFixture() seedFixture {
	three := 3
	var f seedFixture
	f.Project.Name = "演示项目"
	f.Project.Address = "本地"
	f.AcceptanceRecords = []seedAcceptance{
		{
			RegionCode: "virtual:1栋3层", RegionText: "1栋3层",
			Division: "主体结构", Subdivision: "钢筋工程",
			Item: "钢筋验收", ItemCode: "A001",
			Indicator: "保护层厚度", IndicatorCode: "T001",
			Result: "qualified", Remark: "现场抽检合格", DaysAgo: 2,
		},
		{
			RegionCode: "virtual:1栋3层", RegionText: "1栋3层",
			Division: "主体结构", Subdivision: "模板工程",
			Item: "模板验收", ItemCode: "A002",
			Indicator: "模板加固", IndicatorCode: "T002",
			Result: "unqualified", Remark: "局部加固不足", DaysAgo: 1,
		},
	}
	f.IssueReports = []seedIssue{
		{
			RegionText: "1栋3层/核心筒",
			Division:   "主体结构", Subdivision: "模板工程",
			Item: "模板支撑", Indicator: "立杆间距",
			Description: "模板支撑立杆间距偏大，存在安全风险。",
			Severity:    "严重", DeadlineDays: &three,
			ResponsibleUnit: "项目部", ResponsiblePerson: "木易",
			Status: "open", DaysAgo: 1,
		},
	}
	return f
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo fixtures into the database",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		fixture := defaultSeedFixture()
		if file, _ := cmd.Flags().GetString("file"); strings.TrimSpace(file) != "" {
			raw, err := os.ReadFile(file)
			if err != nil {
				return errs.Wrapf(err, "read fixture file %q", file)
			}
			fixture = seedFixture{}
			if err := yaml.Unmarshal(raw, &fixture); err != nil {
				return errs.Wrapf(err, "decode fixture file %q", file)
			}
		}

		project, err := svc.Records.UpsertProject(ctx, fixture.Project.Name, seedStr(fixture.Project.Address))
		if err != nil {
			return errs.Wrap(err, "ensure seed project")
		}

		now := time.Now()
		source := "seed"
		for i, rec := range fixture.AcceptanceRecords {
			created := now.AddDate(0, 0, -rec.DaysAgo)
			if _, err := svc.Records.CreateAcceptance(ctx, records.CreateAcceptanceInput{
				ProjectID:  project.ProjectID,
				RegionCode: seedStr(rec.RegionCode),
				RegionText: rec.RegionText,
				Taxonomy: ports.Taxonomy{
					Division:      seedStr(rec.Division),
					Subdivision:   seedStr(rec.Subdivision),
					Item:          seedStr(rec.Item),
					ItemCode:      seedStr(rec.ItemCode),
					Indicator:     seedStr(rec.Indicator),
					IndicatorCode: seedStr(rec.IndicatorCode),
				},
				Result:          rec.Result,
				Remark:          seedStr(rec.Remark),
				ClientCreatedAt: &created,
				Source:          &source,
			}); err != nil {
				return errs.Wrapf(err, "seed acceptance record %d", i)
			}
		}

		for i, issue := range fixture.IssueReports {
			created := now.AddDate(0, 0, -issue.DaysAgo)
			if _, err := svc.Records.CreateIssue(ctx, records.CreateIssueInput{
				ProjectID:  project.ProjectID,
				RegionText: issue.RegionText,
				Taxonomy: ports.Taxonomy{
					Division:    seedStr(issue.Division),
					Subdivision: seedStr(issue.Subdivision),
					Item:        seedStr(issue.Item),
					Indicator:   seedStr(issue.Indicator),
				},
				Description:       issue.Description,
				Severity:          seedStr(issue.Severity),
				DeadlineDays:      issue.DeadlineDays,
				ResponsibleUnit:   seedStr(issue.ResponsibleUnit),
				ResponsiblePerson: seedStr(issue.ResponsiblePerson),
				Status:            issue.Status,
				ClientCreatedAt:   &created,
				Source:            &source,
			}); err != nil {
				return errs.Wrapf(err, "seed issue report %d", i)
			}
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "seed ok: project=%s acceptance=%d issues=%d\n",
			project.Name, len(fixture.AcceptanceRecords), len(fixture.IssueReports)); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func seedStr(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "", "YAML fixture file (built-in demo fixture when empty)")
}
