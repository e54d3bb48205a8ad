//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ylexus/google-issue-193814298/application/schedule/scheduletest"
	"github.com/ylexus/google-issue-193814298/cmd"
	"github.com/ylexus/google-issue-193814298/domain/exchange"
	"github.com/ylexus/google-issue-193814298/domain/media"
	"github.com/ylexus/google-issue-193814298/domain/probe"
	"github.com/ylexus/google-issue-193814298/infrastructure/config"
	"github.com/ylexus/google-issue-193814298/infrastructure/exchangelog"
	"github.com/ylexus/google-issue-193814298/infrastructure/logging"

	"github.com/cucumber/godog"
	"google.golang.org/api/googleapi"
)

var epoch = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

// fakeDrive implements probe.StorageClient on the fake clock
type fakeDrive struct {
	clock      *scheduletest.FakeClock
	firstDelay time.Duration
	status     int
	starts     []time.Duration
}

func (d *fakeDrive) CreateMarkerFile(ctx context.Context, req probe.MarkerRequest) (*probe.MarkerFile, error) {
	d.starts = append(d.starts, d.clock.Now().Sub(epoch))
	if len(d.starts) == 1 && d.firstDelay > 0 {
		d.clock.Advance(d.firstDelay)
	}
	if d.status != 0 {
		return nil, &googleapi.Error{Code: d.status, Message: http.StatusText(d.status)}
	}
	return &probe.MarkerFile{ID: fmt.Sprintf("marker-%d", len(d.starts))}, nil
}

func (d *fakeDrive) GetStorageQuota(ctx context.Context, req probe.QuotaRequest) (*probe.StorageQuota, error) {
	return &probe.StorageQuota{Limit: 16106127360, Usage: 4096}, nil
}

// fakePhotos implements media.Library
type fakePhotos struct {
	created int
}

func (p *fakePhotos) Upload(ctx context.Context, req media.UploadRequest) (*media.UploadResult, error) {
	return &media.UploadResult{UploadToken: "upload-token-" + req.FileName}, nil
}

func (p *fakePhotos) BatchCreate(ctx context.Context, items media.NewMediaItems) (*media.BatchCreateResult, error) {
	result := &media.BatchCreateResult{}
	for i, item := range items {
		result.Items = append(result.Items, media.ItemResult{
			UploadToken: item.UploadToken,
			MediaItemID: fmt.Sprintf("item-%d", i+1),
		})
	}
	p.created += result.Created()
	return result, nil
}

// memoryFiles implements media.FileReader
type memoryFiles struct {
	files map[string][]byte
	reads int
}

func (m *memoryFiles) ReadFile(path string) ([]byte, error) {
	m.reads++
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("unable to open media file: open %s: %w", path, fs.ErrNotExist)
	}
	return data, nil
}

type scheduleContext struct {
	cfg       *config.Config
	clock     *scheduletest.FakeClock
	drive     *fakeDrive
	photos    *fakePhotos
	files     *memoryFiles
	mediaPath string
	stdout    *bytes.Buffer
	logs      *bytes.Buffer
	err       error
}

func InitializeScheduleScenario(ctx *godog.ScenarioContext) {
	s := &scheduleContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		clock := scheduletest.NewFakeClock(epoch)
		*s = scheduleContext{
			cfg:       config.Default(),
			clock:     clock,
			drive:     &fakeDrive{clock: clock},
			photos:    &fakePhotos{},
			files:     &memoryFiles{files: map[string][]byte{}},
			mediaPath: "/media/cat.jpg",
			stdout:    &bytes.Buffer{},
			logs:      &bytes.Buffer{},
		}
		logging.SetOutput(s.logs)
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		logging.SetOutput(os.Stderr)
		return c, nil
	})

	ctx.Step(`^a media file "([^"]*)" containing "([^"]*)"$`, s.aMediaFileContaining)
	ctx.Step(`^no media file$`, s.noMediaFile)
	ctx.Step(`^the probe interval is "([^"]*)"$`, s.theProbeIntervalIs)
	ctx.Step(`^the missed tick policy is "([^"]*)"$`, s.theMissedTickPolicyIs)
	ctx.Step(`^the first probe takes "([^"]*)"$`, s.theFirstProbeTakes)
	ctx.Step(`^the Drive API answers file creation with status (\d+)$`, s.theDriveAPIAnswersWithStatus)
	ctx.Step(`^the program runs through (\d+) scheduler sleeps?$`, s.theProgramRunsThroughSleeps)
	ctx.Step(`^the exchange log should show in order:$`, s.theExchangeLogShouldShowInOrder)
	ctx.Step(`^every exchange line should have a timestamp and a direction of OUT or IN$`, s.everyExchangeLineShouldBeWellFormed)
	ctx.Step(`^probes should have started at offsets "([^"]*)"$`, s.probesShouldHaveStartedAtOffsets)
	ctx.Step(`^the media file should have been read (\d+) times?$`, s.theMediaFileShouldHaveBeenRead)
	ctx.Step(`^the upload should have created (\d+) media items?$`, s.theUploadShouldHaveCreated)
	ctx.Step(`^the error log should contain "([^"]*)"$`, s.theErrorLogShouldContain)
}

func (s *scheduleContext) aMediaFileContaining(name, content string) error {
	s.mediaPath = "/media/" + name
	s.files.files[s.mediaPath] = []byte(content)
	return nil
}

func (s *scheduleContext) noMediaFile() error {
	s.files.files = map[string][]byte{}
	return nil
}

func (s *scheduleContext) theProbeIntervalIs(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	s.cfg.Probe.Interval = d
	return nil
}

func (s *scheduleContext) theMissedTickPolicyIs(policy string) error {
	s.cfg.Probe.MissedTicks = policy
	return nil
}

func (s *scheduleContext) theFirstProbeTakes(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	s.drive.firstDelay = d
	return nil
}

func (s *scheduleContext) theDriveAPIAnswersWithStatus(status int) error {
	s.drive.status = status
	return nil
}

func (s *scheduleContext) theProgramRunsThroughSleeps(sleeps int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.clock.StopAfter(sleeps, cancel)

	s.err = cmd.RunWithDependencies(ctx, cmd.Dependencies{
		Storage:  s.drive,
		Library:  s.photos,
		Reader:   s.files,
		Recorder: exchangelog.NewWriter(s.stdout, exchangelog.WithClock(s.clock.Now)),
		Clock:    s.clock,
	}, s.cfg, s.mediaPath)
	return s.err
}

func (s *scheduleContext) lines() ([]exchange.Line, error) {
	var out []exchange.Line
	for _, raw := range strings.Split(strings.TrimRight(s.stdout.String(), "\n"), "\n") {
		if raw == "" {
			continue
		}
		line, err := exchange.ParseLine(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *scheduleContext) theExchangeLogShouldShowInOrder(table *godog.Table) error {
	lines, err := s.lines()
	if err != nil {
		return err
	}
	rows := table.Rows[1:]
	if len(lines) < len(rows) {
		return fmt.Errorf("expected at least %d exchange lines, got %d:\n%s", len(rows), len(lines), s.stdout.String())
	}
	for i, row := range rows {
		dir, prefix := row.Cells[0].Value, row.Cells[1].Value
		if string(lines[i].Direction) != dir || !strings.HasPrefix(lines[i].Message, prefix) {
			return fmt.Errorf("line %d: expected %s %q..., got %s %q", i, dir, prefix, lines[i].Direction, lines[i].Message)
		}
	}
	return nil
}

func (s *scheduleContext) everyExchangeLineShouldBeWellFormed() error {
	lines, err := s.lines()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no exchange lines were written")
	}
	return nil
}

func (s *scheduleContext) probesShouldHaveStartedAtOffsets(list string) error {
	var want []time.Duration
	for _, part := range strings.Split(list, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		want = append(want, d)
	}
	if fmt.Sprint(want) != fmt.Sprint(s.drive.starts) {
		return fmt.Errorf("expected probes at %v, got %v", want, s.drive.starts)
	}
	return nil
}

func (s *scheduleContext) theMediaFileShouldHaveBeenRead(times int) error {
	if s.files.reads != times {
		return fmt.Errorf("expected %d reads, got %d", times, s.files.reads)
	}
	return nil
}

func (s *scheduleContext) theUploadShouldHaveCreated(items int) error {
	if s.photos.created != items {
		return fmt.Errorf("expected %d created media items, got %d", items, s.photos.created)
	}
	return nil
}

func (s *scheduleContext) theErrorLogShouldContain(text string) error {
	if !strings.Contains(s.logs.String(), text) {
		return fmt.Errorf("expected error log to contain %q, got:\n%s", text, s.logs.String())
	}
	return nil
}
