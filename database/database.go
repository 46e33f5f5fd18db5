package database

import (
	"fmt"
	"log"

	"feeledger/config"
	"feeledger/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the MySQL connection, migrates the schema and seeds the
// defaults a fresh install needs (categories and the receipt counter row).
func Init(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Category{},
		&models.LedgerEntry{},
		&models.PaymentEvent{},
		&models.ExpenditureRecord{},
		&models.ReceiptSequence{},
	); err != nil {
		return err
	}

	// seed the receipt counter, exactly one row
	var seqCount int64
	DB.Model(&models.ReceiptSequence{}).Count(&seqCount)
	if seqCount == 0 {
		if err := DB.Create(&models.ReceiptSequence{Next: 1}).Error; err != nil {
			return err
		}
	}

	// seed default categories only when the table is empty
	var catCount int64
	DB.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		defaults := []models.Category{
			{Name: "Tuition Fee", Kind: models.CategoryKindFee, DefaultAmount: 25000, Active: true},
			{Name: "Library Fee", Kind: models.CategoryKindFee, DefaultAmount: 500, Active: true},
			{Name: "Laboratory Fee", Kind: models.CategoryKindFee, DefaultAmount: 1500, Active: true},
			{Name: "Exam Fee", Kind: models.CategoryKindFee, DefaultAmount: 800, Active: true},
			{Name: "Late Fine", Kind: models.CategoryKindFine, DefaultAmount: 100, Active: true},
			{Name: "Library Fine", Kind: models.CategoryKindFine, DefaultAmount: 50, Active: true},
		}
		if err := DB.Create(&defaults).Error; err != nil {
			return err
		}
	}

	log.Println("database initialized")
	return nil
}

// GetDB returns the database handle.
func GetDB() *gorm.DB {
	return DB
}
