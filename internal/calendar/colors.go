package calendar

// Palette — пара цветов (фон и рамка) для отображения события в календаре.
type Palette struct {
	Background string `json:"backgroundColor"`
	Border     string `json:"borderColor"`
}

// Colors — палитра календаря. Передаётся в движок развёртки явно,
// чтобы цвета можно было менять конфигурацией, а не правкой кода.
type Colors struct {
	// Занятия, на которые ученик записан.
	Enrolled Palette
	// Занятия без записи.
	NotEnrolled Palette
	// Разовые события.
	SingleEvent Palette
}

// DefaultColors — палитра по умолчанию.
var DefaultColors = Colors{
	Enrolled: Palette{
		Background: "#10b981",
		Border:     "#059669",
	},
	NotEnrolled: Palette{
		Background: "#f59e0b",
		Border:     "#d97706",
	},
	SingleEvent: Palette{
		Background: "#3b82f6",
		Border:     "#2563eb",
	},
}
