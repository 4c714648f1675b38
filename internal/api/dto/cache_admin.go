package dto

// SimulateLoadDTO 合成负载参数，越界直接判定为客户端错误
type SimulateLoadDTO struct {
	Requests int `json:"requests" binding:"required,min=1,max=10000"`
	Users    int `json:"users" binding:"required,min=1,max=1000"`
	Posts    int `json:"posts" binding:"required,min=1,max=1000"`
}

// TierDTO 层级信息
type TierDTO struct {
	Name       string `json:"name"`
	TTLSeconds int64  `json:"ttlSeconds"`
}
