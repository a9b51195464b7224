package db

import (
	"cms/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

func Init() {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	var (
		db  *gorm.DB
		err error
	)
	if config.MYSQL_DSN != "" {
		db, err = gorm.Open(mysql.Open(config.MYSQL_DSN), cfg)
	} else {
		// _busy_timeout makes concurrent writers wait instead of erroring out
		db, err = gorm.Open(sqlite.Open("file:"+config.SQLITE_FILE+"?_busy_timeout=5000"), cfg)
	}
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}
