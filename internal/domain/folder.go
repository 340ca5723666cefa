package domain

// DestinationFolder 是一个可勾选的目标目录。
//
// 在同一个活动列表内按 Path 唯一。
type DestinationFolder struct {
	Path     string
	Name     string // 展示名：目录的 base name
	Checked  bool
	Favorite bool
}
