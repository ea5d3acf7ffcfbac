package store

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dao struct {
	db *gorm.DB
}

func MySQL(url, scheme, user, passwd string) gorm.Dialector {
	return mysql.Open(user + ":" + passwd + "@tcp(" + url + ")/" + scheme + "?charset=utf8")
}

func NewDao(dialector gorm.Dialector) (*Dao, error) {
	Logger := logger.Default
	Logger = Logger.LogMode(logger.Warn)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: Logger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PoolRefresh{}); err != nil {
		return nil, err
	}
	return &Dao{db: db}, nil
}

func (dao *Dao) SavePoolRefresh(refresh *PoolRefresh) error {
	return dao.db.Create(refresh).Error
}

func (dao *Dao) SelectPoolRefresh(signature string) ([]*PoolRefresh, error) {
	refreshes := make([]*PoolRefresh, 0)
	res := dao.db.Where("signature = ?", signature).Order("id").Find(&refreshes)
	return refreshes, res.Error
}
