package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/helpers"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/logging"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/recorder"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
	livekitservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/livekit"
	transcriptionservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/transcription"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/version"
	"github.com/urfave/cli/v3"
)

const statusLogInterval = 30 * time.Second

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:  "classroom-recorder",
		Usage: "Record and transcribe a live classroom within its time quota",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
			&cli.StringFlag{
				Name:     "room",
				Usage:    "Room code to record",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "user",
				Usage:    "Identity used to join the room",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "user-id",
				Usage: "Platform user id",
			},
			&cli.StringFlag{
				Name:  "role",
				Usage: "student, teacher or admin",
				Value: string(models.RoleTeacher),
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Classroom server url, overrides recorder_settings.server_url",
			},
			&cli.BoolFlag{
				Name:  "clear-transcript",
				Usage: "Clear the stored transcript before recording",
			},
		},
		Action:  runRecorder,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func loadConfig(c *cli.Command) (*config.AppConfig, error) {
	file := c.String("config")
	appCnf, err := config.ReadYamlConfigFile(file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || c.IsSet("config") {
			return nil, err
		}
		// defaults are enough for a local recording
		appCnf = new(config.AppConfig)
		if wd, err := os.Getwd(); err == nil {
			appCnf.RootWorkingDir = wd
		}
	}
	if s := c.String("server"); s != "" {
		appCnf.RecorderSettings.ServerUrl = s
	}
	return config.New(appCnf)
}

func runRecorder(ctx context.Context, c *cli.Command) error {
	appCnf, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		return err
	}
	appCnf.Logger = logger
	rc := &appCnf.RecorderSettings

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var roomSource *recorder.RoomAudioSource
	if rc.Capture.Source == config.CaptureSourceLivekit {
		if rc.ServerUrl == "" {
			return errors.New("capture source livekit needs recorder_settings.server_url")
		}
		roomSource = recorder.NewRoomAudioSource(rc.Capture.Participant, rc.Capture.SampleRate, logger)
	}

	// the quota is kept per normalized code, so every spelling counts the same
	roomCode, err := roomcode.New(appCnf.RoomSettings.CodeCase).Normalize(c.String("room"))
	if err != nil {
		return fmt.Errorf("--room %q: %w", c.String("room"), err)
	}
	if rc.ServerUrl != "" {
		info, err := recorder.NewJoinClient(rc.ServerUrl, logger).FetchJoinInfo(ctx, &recorder.JoinRequest{
			Room:   roomCode,
			User:   c.String("user"),
			UserId: c.String("user-id"),
			Role:   c.String("role"),
		})
		if err != nil {
			return err
		}
		roomCode = info.RoomName

		if claims, err := models.ParseJoinClaimsUnverified(info.Token); err == nil {
			logger.WithFields(logrus.Fields{
				"identity":  claims.Identity(),
				"expiresAt": claims.ExpiresAt(),
			}).Infoln("joined as")
		}
		if (rc.JoinMedia || roomSource != nil) && info.Url != "" {
			var cb *lksdk.RoomCallback
			if roomSource != nil {
				cb = roomSource.Callback()
			}
			room, err := livekitservice.JoinWithToken(info.Url, info.Token, cb, logger)
			if err != nil {
				return err
			}
			defer room.Disconnect()
		}
	} else {
		logger.Warnln("no server url configured, recording without joining a room")
	}

	// the store may need redis or the database
	if err = helpers.PrepareServer(ctx, appCnf); err != nil {
		return err
	}
	defer helpers.HandleCloseConnections(appCnf)

	store, err := roomstate.NewFromConfig(&rc.StateStore, appCnf.RoomSettings.CodeCase, appCnf.RDS, appCnf.DB, logger)
	if err != nil {
		return err
	}

	var dispatcher recorder.Dispatcher
	provider, err := transcriptionservice.NewProvider(ctx, &appCnf.TranscriptionInfo, logger)
	if err != nil {
		logger.WithError(err).Warnln("transcription disabled")
	} else {
		dispatcher = transcription.NewDispatcher(provider, &appCnf.TranscriptionInfo, logger)
	}

	var source recorder.AudioSource
	if roomSource != nil {
		wctx, cancel := context.WithTimeout(ctx, config.DefaultTrackWait)
		err = roomSource.WaitForTrack(wctx)
		cancel()
		if err != nil {
			return err
		}
		source = roomSource
	} else {
		source = recorder.NewFFmpegSource(&rc.Capture, logger)
	}
	quotaDone := make(chan struct{})
	var quotaOnce sync.Once
	ctl, err := recorder.NewController(ctx, &recorder.Options{
		RoomCode:   roomCode,
		CodeCase:   appCnf.RoomSettings.CodeCase,
		Settings:   rc,
		Source:     source,
		Dispatcher: dispatcher,
		Store:      store,
		OnStop: func(s recorder.Status) {
			if s.Remaining == 0 {
				quotaOnce.Do(func() { close(quotaDone) })
			}
		},
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = ctl.Close()
		logTranscript(logger, ctl)
	}()

	if c.Bool("clear-transcript") {
		if err = ctl.ClearTranscript(); err != nil {
			return err
		}
	}

	if err = ctl.Start(); err != nil {
		if errors.Is(err, recorder.ErrQuotaExhausted) {
			logger.WithField("quota", rc.Quota).Warnln("recording time for this room is used up")
			return nil
		}
		return err
	}

	ticker := time.NewTicker(statusLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infoln("exit requested, stopping recording")
			return nil
		case <-quotaDone:
			logger.Infoln("recording quota reached")
			return nil
		case <-ticker.C:
			s := ctl.Status()
			logger.WithFields(logrus.Fields{
				"state":     s.State,
				"remaining": s.Remaining.Round(time.Second),
				"inFlight":  s.InFlight,
				"segments":  s.Segments,
				"lastError": s.LastError,
			}).Infoln("recorder status")
		}
	}
}

func logTranscript(logger *logrus.Logger, ctl *recorder.Controller) {
	s := ctl.Status()
	logger.WithFields(logrus.Fields{
		"totalUsed": s.TotalUsed.Round(time.Second),
		"segments":  s.Segments,
	}).Infoln("recorder finished")

	for _, seg := range ctl.Transcript() {
		fmt.Printf("[%s] %s\n", seg.Timestamp, seg.Text)
	}
}
