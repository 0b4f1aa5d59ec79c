package normalize

// cyrillicToLatin transliterates the Serbian Cyrillic alphabet to Latin.
// Grounded on original_source/PythonScraper/core/matching.py's CYRILLIC_TO_LATIN table.
var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'ђ': "dj", 'е': "e",
	'ж': "z", 'з': "z", 'и': "i", 'ј': "j", 'к': "k", 'л': "l", 'љ': "lj",
	'м': "m", 'н': "n", 'њ': "nj", 'о': "o", 'п': "p", 'р': "r", 'с': "s",
	'т': "t", 'ћ': "c", 'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "c",
	'џ': "dz", 'ш': "s",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Ђ': "Dj", 'Е': "E",
	'Ж': "Z", 'З': "Z", 'И': "I", 'Ј': "J", 'К': "K", 'Л': "L", 'Љ': "Lj",
	'М': "M", 'Н': "N", 'Њ': "Nj", 'О': "O", 'П': "P", 'Р': "R", 'С': "S",
	'Т': "T", 'Ћ': "C", 'У': "U", 'Ф': "F", 'Х': "H", 'Ц': "C", 'Ч': "C",
	'Џ': "Dz", 'Ш': "S",
}

// transliterate converts any Cyrillic runes in s to their Latin equivalents,
// leaving everything else untouched.
func transliterate(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if lat, ok := cyrillicToLatin[r]; ok {
			out = append(out, lat...)
			continue
		}
		out = append(out, string(r)...)
	}
	return string(out)
}
