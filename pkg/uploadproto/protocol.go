// Package uploadproto описывает HTTP-протокол сервиса возобновляемых загрузок.
package uploadproto

// Параметры REST-протокола чанковой загрузки.
const (
	SessionsPathFormat = "%s/sessions"
	SessionPathFormat  = "%s/sessions/%s"
	ChunkPathFormat    = "%s/sessions/%s/chunks/%d"
	ContentPathFormat  = "%s/sessions/%s/content"

	HeaderReceivedThrough = "X-Received-Through"
)
