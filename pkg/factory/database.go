package factory

import (
	"context"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// mysqlDSN builds the data source name for host with the primary's
// credentials unless overridden.
func mysqlDSN(info *config.DatabaseInfo, host string, port int32, user, pass string) (string, error) {
	charset := "utf8mb4"
	if info.Charset != nil && *info.Charset != "" {
		charset = *info.Charset
	}
	loc := time.UTC
	if info.Loc != nil && *info.Loc != "" {
		l, err := time.LoadLocation(*info.Loc)
		if err != nil {
			return "", fmt.Errorf("invalid database loc: %w", err)
		}
		loc = l
	}

	c := gomysql.NewConfig()
	c.User = user
	c.Passwd = pass
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", host, port)
	c.DBName = info.DBName
	c.ParseTime = true
	c.Loc = loc
	c.Params = map[string]string{"charset": charset}
	return c.FormatDSN(), nil
}

func NewDatabaseConnection(ctx context.Context, appCnf *config.AppConfig) error {
	info := &appCnf.DatabaseInfo
	dsn, err := mysqlDSN(info, info.Host, info.Port, info.Username, info.Password)
	if err != nil {
		return err
	}

	cnf := &gorm.Config{}
	loggerCnf := logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Info,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	}
	if !appCnf.Client.Debug {
		loggerCnf.LogLevel = logger.Warn
		loggerCnf.Colorful = false
	}
	cnf.Logger = logger.New(appCnf.Logger, loggerCnf)

	db, err := gorm.Open(mysql.New(mysql.Config{DSN: dsn}), cnf)
	if err != nil {
		return err
	}

	if len(info.Replicas) > 0 {
		appCnf.Logger.Infof("found %d read replicas, configuring dbresolver", len(info.Replicas))
		var replicas []gorm.Dialector

		for _, r := range info.Replicas {
			if r.Username == "" {
				r.Username = info.Username
			}
			if r.Password == "" {
				r.Password = info.Password
			}
			if r.Port == 0 {
				r.Port = info.Port
			}
			replicaDsn, err := mysqlDSN(info, r.Host, r.Port, r.Username, r.Password)
			if err != nil {
				return err
			}
			replicas = append(replicas, mysql.Open(replicaDsn))
		}
		resolverCnf := dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: appCnf.Client.Debug,
		}
		if err = db.Use(dbresolver.Register(resolverCnf)); err != nil {
			return err
		}
	}

	d, err := db.DB()
	if err != nil {
		return err
	}
	if err = d.PingContext(ctx); err != nil {
		return err
	}

	connMaxLifetime := time.Minute * 4
	if info.ConnMaxLifetime != nil && *info.ConnMaxLifetime > 0 {
		connMaxLifetime = *info.ConnMaxLifetime
	}
	maxOpenConns := 10
	if info.MaxOpenConns != nil && *info.MaxOpenConns > 0 {
		maxOpenConns = *info.MaxOpenConns
	}
	d.SetConnMaxLifetime(connMaxLifetime)
	d.SetMaxOpenConns(maxOpenConns)
	d.SetMaxIdleConns(maxOpenConns)

	appCnf.DB = db
	return nil
}
