package pool

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNParams describe one MySQL endpoint.
type DSNParams struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	Charset        string
	ConnectTimeout time.Duration
}

// BuildDSN renders a go-sql-driver DSN. ParseTime is always on because the
// row converter expects time.Time for DATE and DATETIME columns.
func BuildDSN(p DSNParams) string {
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", p.Host, p.Port)
	cfg.DBName = p.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = p.ConnectTimeout
	if p.Charset != "" {
		cfg.Params = map[string]string{"charset": p.Charset}
	}
	return cfg.FormatDSN()
}
