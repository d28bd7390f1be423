// Package uploadhttp реализует Upload API — HTTP-интерфейс возобновляемой
// чанковой загрузки поверх локального диска. Основные эндпоинты:
//   - POST   /sessions — создаёт сессию загрузки по метаданным файла.
//   - PUT    /sessions/{id}/chunks/{offset} — принимает часть по байтовому смещению.
//   - GET    /sessions — перечисляет метаданные всех сессий.
//   - GET    /sessions/{id} — отдаёт метаданные и статус сессии.
//   - GET    /sessions/{id}/content — отдаёт собранный файл, когда сессия completed.
//   - DELETE /sessions/{id} — удаляет сессию вместе с данными.
//   - POST   /admin/gc — вручную запускает сбор брошенных сессий.
//   - GET    /health — отдаёт агрегированные метрики по каталогам данных.
package uploadhttp
