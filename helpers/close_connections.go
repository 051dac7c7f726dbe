package helpers

import (
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// HandleCloseConnections releases whatever PrepareServer opened.
func HandleCloseConnections(appCnf *config.AppConfig) {
	if appCnf == nil {
		return
	}

	if appCnf.NatsConn != nil {
		// flush pending room events
		_ = appCnf.NatsConn.Drain()
	}
	if appCnf.DB != nil {
		if db, err := appCnf.DB.DB(); err == nil {
			_ = db.Close()
		}
	}
	if appCnf.RDS != nil {
		_ = appCnf.RDS.Close()
	}
}
