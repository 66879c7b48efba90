package mainmodel

import "time"

// SysConfig 运行期参数，管理端修改后无需重启
type SysConfig struct {
	ConfigId    int    `gorm:"primaryKey;autoIncrement"`
	ConfigName  string `gorm:"type:varchar(100)"`
	ConfigKey   string `gorm:"type:varchar(100);index"`
	ConfigValue string `gorm:"type:varchar(500)"`
	ConfigType  string `gorm:"type:char(1);default:N"`
	CreateBy    string
	CreateTime  time.Time `gorm:"autoCreateTime"`
	UpdateBy    string
	UpdateTime  time.Time `gorm:"autoUpdateTime"`
	Remark      string
}

func (SysConfig) TableName() string {
	return "sys_config"
}
