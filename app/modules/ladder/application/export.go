package ladderservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	rankingSheet = "Ranking"
	matchesSheet = "Matches"
)

// ExportWorkbook returns the ladder's ranking and full match list as an XLSX file.
func (s *LadderService) ExportWorkbook(ctx context.Context, name string) ([]byte, error) {
	return withTelemetry(s, ctx, "ExportWorkbook", name, func(ctx context.Context) ([]byte, error) {
		if _, err := s.getLadder(ctx, nil, name); err != nil {
			return nil, err
		}

		var (
			players []ladderdb.Player
			matches []ladderdb.Match
		)
		err := ladderdb.WithRetry(ctx, s.retry, func() error {
			var err error
			if players, err = s.repo.ListPlayers(ctx, nil, name); err != nil {
				return err
			}
			matches, err = s.repo.ListMatches(ctx, nil, name, ladderdb.MatchQuery{})
			return err
		})
		if err != nil {
			return nil, err
		}

		return BuildWorkbook(Standings(toPlayerStates(players)), toDomainMatches(matches))
	})
}

// BuildWorkbook lays out a ranking sheet and a matches sheet with one column
// per team.
func BuildWorkbook(standings []ladderdomain.Standing, matches []ladderdomain.Match) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), rankingSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(matchesSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]any{{"Rank", "Name", "Score", "Mu", "Sigma", "Games", "Wins", "Last Match"}}
	for _, st := range standings {
		rows = append(rows, []any{st.Rank, st.Name, st.Score, st.Mu, st.Sigma, st.GamesCount, st.WinsCount, st.LastSeenSequence})
	}
	if err := writeRows(f, rankingSheet, rows, header); err != nil {
		return nil, err
	}

	teams := 0
	for _, m := range matches {
		teams = max(teams, len(m.Outcome))
	}
	head := []any{"Match", "Played At"}
	for i := range teams {
		head = append(head, fmt.Sprintf("Team %d", i+1))
	}
	rows = [][]any{head}
	for _, m := range matches {
		row := []any{m.Sequence, m.PlayedAt.UTC().Format(time.RFC3339)}
		for _, team := range m.Outcome {
			row = append(row, strings.Join(team, ", "))
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, matchesSheet, rows, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}
