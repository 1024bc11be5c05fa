package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/damoang/opinion-backend/internal/app"
	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/config"
	"github.com/damoang/opinion-backend/internal/database"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	pkglogger "github.com/damoang/opinion-backend/pkg/logger"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// session holds what every subcommand needs once Before has run
type session struct {
	configPath string
	adminID    string

	app   *app.App
	actor *domain.Actor
	close func()
}

func run(ctx context.Context, args []string) error {
	s := &session{}

	cmd := &cli.Command{
		Name:  "opinionctl",
		Usage: "의견 관리 운영 도구 (목록, 엑셀, 답변, 통계)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "config file path (default: configs/config.$APP_ENV.yaml)",
				Destination: &s.configPath,
			},
			&cli.StringFlag{
				Name:        "admin",
				Usage:       "acting admin employee id",
				Sources:     cli.EnvVars("OPINIONCTL_ADMIN"),
				Required:    true,
				Destination: &s.adminID,
			},
		},
		Before: s.open,
		After: func(ctx context.Context, c *cli.Command) error {
			if s.close != nil {
				s.close()
			}
			return nil
		},
		Commands: []*cli.Command{
			s.cmdList(),
			s.cmdExport(),
			s.cmdRespond(),
			s.cmdStats(),
		},
	}
	return cmd.Run(ctx, args)
}

func (s *session) open(ctx context.Context, c *cli.Command) (context.Context, error) {
	config.LoadDotEnv()
	pkglogger.InitStructured(config.Env())

	path := s.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return ctx, err
	}
	db, err := database.Open(cfg, gormlogger.Silent)
	if err != nil {
		return ctx, fmt.Errorf("connect database: %w", err)
	}
	s.close = func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return ctx, s.bind(ctx, app.Services(app.Deps{Config: cfg, DB: db}), repository.NewUserRepository(db))
}

// bind resolves the acting admin; the CLI goes through the same admin checks as the API
func (s *session) bind(ctx context.Context, a *app.App, users repository.UserRepository) error {
	user, err := users.FindByEmployeeID(ctx, s.adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("admin %s: %w", s.adminID, common.ErrUserNotFound)
	}
	if err != nil {
		return err
	}
	if !user.IsAdmin() || !user.IsActive() {
		return fmt.Errorf("admin %s: %w", s.adminID, common.ErrForbidden)
	}
	s.app = a
	s.actor = domain.ActorFromUser(user)
	return nil
}

func filterFlags(f *domain.ListFilter) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "year", Destination: &f.Year},
		&cli.StringFlag{Name: "quarter", Usage: "Q1..Q4", Destination: &f.Quarter},
		&cli.StringFlag{Name: "from", Usage: "YYYY-MM-DD", Destination: &f.From},
		&cli.StringFlag{Name: "to", Usage: "YYYY-MM-DD", Destination: &f.To},
		&cli.StringFlag{Name: "status", Value: "all", Destination: &f.Status},
		&cli.StringFlag{Name: "category", Value: "all", Destination: &f.Category},
		&cli.StringFlag{Name: "company", Value: "all", Destination: &f.Company},
		&cli.StringFlag{Name: "q", Usage: "search term", Destination: &f.Search},
	}
}

func (s *session) cmdList() *cli.Command {
	var f domain.ListFilter
	return &cli.Command{
		Name:  "list",
		Usage: "관리자 의견 목록 (블라인드 마스킹 적용)",
		Flags: filterFlags(&f),
		Action: func(ctx context.Context, c *cli.Command) error {
			views, err := s.app.Query.List(ctx, s.actor, &f)
			if err != nil {
				return err
			}
			return writeTable(c.Root().Writer, views)
		},
	}
}

func (s *session) cmdExport() *cli.Command {
	var f domain.ListFilter
	var out string
	flags := append(filterFlags(&f), &cli.StringFlag{
		Name:        "out",
		Aliases:     []string{"o"},
		Usage:       "output path (default: generated filename)",
		Destination: &out,
	})
	return &cli.Command{
		Name:  "export",
		Usage: "엑셀 내보내기 (블라인드 의견 제외)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := s.app.Export.Export(ctx, s.actor, &f)
			if err != nil {
				return err
			}
			if out == "" {
				out = result.Filename
			}
			if err := os.WriteFile(out, result.Content, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "%s: %d rows, %d excluded\n", out, result.Rows, result.ExcludedCount)
			return nil
		},
	}
}

func (s *session) cmdRespond() *cli.Command {
	var status, desc string
	return &cli.Command{
		Name:      "respond",
		Usage:     "상태/답변 등록",
		ArgsUsage: "<opinion-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Required: true, Destination: &status},
			&cli.StringFlag{Name: "desc", Usage: "답변 내용", Destination: &desc},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := strconv.ParseUint(c.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("opinion id: %w", err)
			}
			opinion, err := s.app.Opinions.Respond(ctx, s.actor, id, status, desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "#%d %s\n", opinion.ID, opinion.Status)
			return nil
		},
	}
}

func (s *session) cmdStats() *cli.Command {
	var f domain.ListFilter
	return &cli.Command{
		Name:  "stats",
		Usage: "기간 통계 (JSON)",
		Flags: filterFlags(&f)[:4],
		Action: func(ctx context.Context, c *cli.Command) error {
			stats, err := s.app.Stats.Stats(ctx, s.actor, &f)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}

func writeTable(w io.Writer, views []domain.OpinionView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEQ\tDATE\tSTATUS\tCATEGORY\tCOMPANY\tDEPT\tUSER\tTITLE")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Seq, v.RegDate, v.Status, v.Category, v.Company, v.Dept, v.UserID, v.Title)
	}
	return tw.Flush()
}
