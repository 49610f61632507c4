package dbmodels

type ConfigurationEntry struct {
	BaseModel
	ConfigKey   string `gorm:"type:varchar(255);uniqueIndex"`
	ConfigValue string `gorm:"type:varchar(2000)"`
	Category    string `gorm:"type:varchar(100)"`
	IsActive    bool   `gorm:"default:true"`
}

func (ConfigurationEntry) TableName() string {
	return "configuration"
}
