package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"exrates/internal/domain"
	"exrates/internal/rate"

	"github.com/sirupsen/logrus"
)

const menu = `
Choose an action:
  1 - ingest rates for a date
  2 - look up a currency rate
  3 - exit
> `

type RateService interface {
	Ingest(ctx context.Context, date time.Time) (rate.IngestResult, error)
	Query(ctx context.Context, currencyID int, date time.Time) (rate.QueryResult, error)
}

type DeltaService interface {
	Delta(ctx context.Context, date time.Time, currencyID int) (domain.Delta, error)
}

// errQuit is returned by readers when input ends.
var errQuit = errors.New("input closed")

// Prompt is the interactive operator loop over the rate service.
type Prompt struct {
	in      *bufio.Scanner
	out     io.Writer
	service RateService
	deltas  DeltaService
}

// Run serves menu choices until the operator exits, input ends or ctx is canceled.
// Service errors are printed and the loop goes on.
func (p *Prompt) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := p.readLine(menu)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = p.ingest(ctx)
		case "2":
			err = p.query(ctx)
		case "3":
			p.printf("Bye.\n")
			return nil
		default:
			p.printf("Unknown option %q, choose 1, 2 or 3.\n", choice)
			continue
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			p.printf("Error: %v\n", err)
			if p.in.Err() != nil {
				return err
			}
		}
	}
}

func (p *Prompt) ingest(ctx context.Context) error {
	date, err := p.readDate()
	if err != nil {
		return err
	}

	res, err := p.service.Ingest(ctx, date)
	if err != nil {
		logrus.WithError(err).WithField("date", date.Format(domain.DateLayout)).Error("Interactive ingestion failed")
		return err
	}
	p.printf("Rates for %s ingested: status code %d, %d records stored.\n",
		res.Date.Format(domain.DateLayout), res.StatusCode, res.Inserted)
	return nil
}

func (p *Prompt) query(ctx context.Context) error {
	currencyID, err := p.readCurrencyID()
	if err != nil {
		return err
	}
	date, err := p.readDate()
	if err != nil {
		return err
	}

	res, err := p.service.Query(ctx, currencyID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.printf("No rate for currency %d on %s.\n", currencyID, date.Format(domain.DateLayout))
			return nil
		}
		return err
	}

	rec := res.Record
	p.printf("Currency:      %d (%s)\n", rec.CurrencyID, rec.Abbreviation)
	p.printf("Date:          %s\n", rec.Date.Format(domain.DateLayout))
	p.printf("Official rate: %v\n", rec.OfficialRate)
	p.printf("Source:        %s\n", res.Source)

	d, err := p.deltas.Delta(ctx, date, currencyID)
	if err != nil {
		p.printf("Change since previous day: unavailable (%v)\n", err)
		return nil
	}
	p.printf("Change since %s: %s\n", d.PreviousDate.Format(domain.DateLayout), d.String())
	return nil
}

func (p *Prompt) readDate() (time.Time, error) {
	for {
		line, err := p.readLine("Date (YYYY-MM-DD): ")
		if err != nil {
			return time.Time{}, err
		}
		date, parseErr := rate.ParseDate(line)
		if parseErr == nil {
			if normalized := date.Format(domain.DateLayout); normalized != line {
				p.printf("Note: %s does not exist, using %s.\n", line, normalized)
			}
			return date, nil
		}
		p.printf("%v\n", parseErr)
	}
}

func (p *Prompt) readCurrencyID() (int, error) {
	for {
		line, err := p.readLine("Currency id: ")
		if err != nil {
			return 0, err
		}
		id, parseErr := rate.ParseCurrencyID(line)
		if parseErr == nil {
			return id, nil
		}
		p.printf("%v\n", parseErr)
	}
}

func (p *Prompt) readLine(prompt string) (string, error) {
	p.printf("%s", prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompt) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func NewPrompt(in io.Reader, out io.Writer, service RateService, deltas DeltaService) *Prompt {
	return &Prompt{in: bufio.NewScanner(in), out: out, service: service, deltas: deltas}
}
