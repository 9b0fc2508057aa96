package exercise

// Exercise is one home-screen catalog entry. Only the pushup exercise
// has a counting flow behind it; the rest are placeholders in the
// client.
type Exercise struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Sets      string `json:"sets"`
	Calories  string `json:"calories,omitempty"`
	ImageURL  string `json:"image"`
	Trackable bool   `json:"trackable"`
}

// Catalog returns the static exercise list.
func Catalog() []Exercise {
	return []Exercise{
		{
			ID:       "1",
			Title:    "Squat Exercises",
			Sets:     "2 Sets",
			Calories: "105 Kcal",
			ImageURL: "https://source.unsplash.com/100x100/?squat,fitness",
		},
		{
			ID:        "2",
			Title:     "Push-Ups Exercises",
			Sets:      "2 Sets",
			Calories:  "105 Kcal",
			ImageURL:  "https://source.unsplash.com/100x100/?pushup,workout",
			Trackable: true,
		},
	}
}
