package models

// Play описывает содержимое тренерской схемы (play).
// Движок хранит payload как непрозрачные байты; структура используется CLI для валидации файлов.
type Play struct {
	Name        string     `json:"name"`        // Name название схемы
	Description string     `json:"description"` // Description текстовое описание
	Formation   string     `json:"formation"`   // Formation расстановка (например, "shotgun", "4-4-2")
	Positions   []Position `json:"positions"`   // Positions стартовые позиции игроков
	Routes      []Route    `json:"routes"`      // Routes маршруты игроков
}

// Position стартовая позиция игрока на схеме
type Position struct {
	Player string  `json:"player"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Point точка маршрута
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Route маршрут игрока
type Route struct {
	Player    string  `json:"player"`
	Waypoints []Point `json:"waypoints"`
}
