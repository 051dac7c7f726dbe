package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/helpers"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/factory"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/logging"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/routers"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "classroom-server",
		Usage:       "Live classroom room registry and join credential service",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := config.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return err
	}
	appCnf, err = config.New(appCnf)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to setup logger")
	}
	appCnf.Logger = logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// now prepare our server
	err = helpers.PrepareServer(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}
	if !appCnf.LivekitInfo.IsConfigured() {
		logger.Warnln("livekit_info is incomplete, /token will answer 503")
	}

	// boot up some services
	appFactory.Boot()

	// defer close connections
	defer helpers.HandleCloseConnections(appCnf)

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig).Infoln("exit requested, shutting down")
		appFactory.Shutdown()
		_ = rt.Shutdown()
	}()

	err = rt.Listen(fmt.Sprintf(":%d", appCnf.Client.Port))
	if err != nil {
		logger.Fatalln(err)
	}
	return nil
}
