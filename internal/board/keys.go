package board

const (
	// Path 是留言板的唯一路由，精确匹配
	Path = "/board"

	// QueryParam 携带新留言的查询参数
	QueryParam = "txt"

	// MessageKey 是保存当前留言的键。
	// Redis中是一个String，SQL后端中是 kv_entries 表的一行。
	MessageKey = "board:current_message"
)

const (
	// DefaultMessage 在从未写入过留言时返回
	DefaultMessage = "メッセージはありません"

	// NoStoreMessage 在没有可用存储时返回
	NoStoreMessage = "KVなし"
)
