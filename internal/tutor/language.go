package tutor

// Language is one tutoring track. The code doubles as the persistence
// partition key (after normalization in the transcript store).
type Language struct {
	Code  string
	Label string
}

// Languages is the closed set of supported tracks, in sidebar order.
var Languages = []Language{
	{Code: "It", Label: "Italian (İtalyanca) 🇮🇹"},
	{Code: "Es", Label: "Spanish (İspanyolca) 🇪🇸"},
	{Code: "De", Label: "German (Almanca) 🇩🇪"},
	{Code: "Fr", Label: "French (Fransızca) 🇫🇷"},
	{Code: "Jp", Label: "Japanese (Japonca) 🇯🇵"},
	{Code: "En", Label: "English (İngilizce) 🇬🇧"},
}

// LanguageByCode resolves a code to its track. Unknown codes return ok=false;
// the HTTP boundary rejects those before they reach the controller.
func LanguageByCode(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}
