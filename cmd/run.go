package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appprobe "github.com/ylexus/google-issue-193814298/application/probe"
	"github.com/ylexus/google-issue-193814298/application/schedule"
	"github.com/ylexus/google-issue-193814298/application/upload"
	"github.com/ylexus/google-issue-193814298/domain/exchange"
	"github.com/ylexus/google-issue-193814298/domain/media"
	"github.com/ylexus/google-issue-193814298/domain/probe"
	"github.com/ylexus/google-issue-193814298/infrastructure/apierr"
	"github.com/ylexus/google-issue-193814298/infrastructure/auth"
	"github.com/ylexus/google-issue-193814298/infrastructure/config"
	"github.com/ylexus/google-issue-193814298/infrastructure/drive"
	"github.com/ylexus/google-issue-193814298/infrastructure/exchangelog"
	"github.com/ylexus/google-issue-193814298/infrastructure/filesystem"
	"github.com/ylexus/google-issue-193814298/infrastructure/logging"
	"github.com/ylexus/google-issue-193814298/infrastructure/photos"
	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"

	"github.com/spf13/cobra"
)

// Job names used in scheduler diagnostics
const (
	ProbeJob  = "probe"
	UploadJob = "upload"
)

// Dependencies holds everything the scheduled jobs talk to
type Dependencies struct {
	Storage  probe.StorageClient
	Library  media.Library
	Reader   media.FileReader
	Recorder exchange.Recorder
	Clock    schedule.Clock

	// TokenPath is mentioned when the API rejects the credentials
	TokenPath string
}

func runRoot(cmd *cobra.Command, args []string) error {
	secretPath, mediaPath := args[0], args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	clientConfig, err := auth.LoadClientConfig(secretPath)
	if err != nil {
		return err
	}

	reader := filesystem.NewReader()
	if !reader.Exists(mediaPath) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: media file %s does not exist; the upload will fail\n", mediaPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := auth.NewTokenStore(cfg.Google.TokenDirectory)
	bootstrapper := auth.NewBootstrapper(clientConfig, store,
		auth.WithCallbackPort(cfg.Google.CallbackPort),
		auth.WithOutput(cmd.ErrOrStderr()))

	session, err := bootstrapper.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("failed to authorize: %w", err)
	}
	if err := session.Credential().Validate(); err != nil {
		return fmt.Errorf("failed to authorize: %w; delete %s and try again", err, store.Path())
	}
	logging.Debug("Authorized as %s", session.Credential())

	driveClient, err := drive.NewClient(ctx, session.HTTPClient(ctx),
		drive.WithApplicationName(cfg.Google.ApplicationName),
		drive.WithRateLimiter(cfg.RateLimit.Drive.Limiter(ratelimit.Drive)))
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	photosClient, err := photos.NewClient(session.CredentialHTTPClient(ctx),
		photos.WithRateLimiter(cfg.RateLimit.Photos.Limiter(ratelimit.Photos)))
	if err != nil {
		return fmt.Errorf("failed to create Google Photos client: %w", err)
	}

	return RunWithDependencies(ctx, Dependencies{
		Storage:   driveClient,
		Library:   photosClient,
		Reader:    reader,
		Recorder:  exchangelog.NewWriter(cmd.OutOrStdout()),
		TokenPath: store.Path(),
	}, cfg, mediaPath)
}

// RunWithDependencies schedules the probe and the upload and blocks until ctx is done
func RunWithDependencies(ctx context.Context, deps Dependencies, cfg *config.Config, mediaPath string) error {
	policy, err := schedule.ParsePolicy(cfg.Probe.MissedTicks)
	if err != nil {
		return err
	}

	opts := []schedule.Option{
		schedule.WithPolicy(policy),
		schedule.WithResultHook(resultReporter(deps.TokenPath)),
	}
	if deps.Clock != nil {
		opts = append(opts, schedule.WithClock(deps.Clock))
	}
	scheduler := schedule.New(opts...)

	prober := appprobe.NewService(deps.Storage, deps.Recorder, cfg.Probe.MarkerName)
	uploader := upload.NewService(deps.Library, deps.Reader, deps.Recorder, mediaPath, cfg.Upload.MimeType)

	if err := scheduler.Every(ProbeJob, cfg.Probe.Interval, prober.Tick); err != nil {
		return err
	}
	scheduler.Once(UploadJob, uploader.Run)

	logging.Info("Probing Drive every %s (missed ticks: %s), uploading %s once", cfg.Probe.Interval, policy, mediaPath)
	return scheduler.Run(ctx)
}

func resultReporter(tokenPath string) func(schedule.Result) {
	return func(r schedule.Result) {
		switch {
		case apierr.IsUnauthorized(r.Err) && tokenPath != "":
			logging.Error("%s: credentials were rejected; delete %s to authorize again", r.Job, tokenPath)
		case apierr.IsRateLimited(r.Err):
			if wait := apierr.RetryAfter(r.Err); wait > 0 {
				logging.Warn("%s: rate limited, Google asked to retry after %s; the schedule is unchanged", r.Job, wait)
			}
		}
	}
}
