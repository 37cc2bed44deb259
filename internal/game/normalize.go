package game

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Normalize folds an answer submission into canonical hiragana: whitespace
// removed, fullwidth/halfwidth variants folded, Latin phonetic input
// transliterated, katakana lowered to hiragana, long-vowel marks resolved.
// Accepted readings are stored in the same form, so matching is exact
// membership, never fuzzy.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	s = stripSpaces(s)
	s = romajiToHiragana(s)
	s = foldKana(s)
	return s
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// kanaTable maps romaji syllables to hiragana. Both Hepburn and kunrei
// spellings are listed; lookup is longest-match first.
var kanaTable = map[string]string{
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",
	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"sa": "さ", "shi": "し", "si": "し", "su": "す", "se": "せ", "so": "そ",
	"za": "ざ", "ji": "じ", "zi": "じ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"ta": "た", "chi": "ち", "ti": "ち", "tsu": "つ", "tu": "つ", "te": "て", "to": "と",
	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"ha": "は", "hi": "ひ", "fu": "ふ", "hu": "ふ", "he": "へ", "ho": "ほ",
	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"ya": "や", "yu": "ゆ", "yo": "よ",
	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"wa": "わ", "wo": "を",
	"kya": "きゃ", "kyu": "きゅ", "kyo": "きょ",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",
	"sha": "しゃ", "shu": "しゅ", "sho": "しょ",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",
	"ja": "じゃ", "ju": "じゅ", "jo": "じょ",
	"jya": "じゃ", "jyu": "じゅ", "jyo": "じょ",
	"zya": "じゃ", "zyu": "じゅ", "zyo": "じょ",
	"cha": "ちゃ", "chu": "ちゅ", "cho": "ちょ",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",
	"fa": "ふぁ", "fi": "ふぃ", "fe": "ふぇ", "fo": "ふぉ",
	"she": "しぇ", "che": "ちぇ", "je": "じぇ",
	"vu": "ゔ",
	"-": "ー",
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// romajiToHiragana transliterates ASCII romaji runs in place, leaving any
// non-ASCII runes untouched. Unconvertible ASCII is passed through and will
// simply fail to match a reading.
func romajiToHiragana(s string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		b := s[i]
		if b >= 0x80 {
			// Multi-byte rune; copy it whole.
			r, size := utf8.DecodeRuneInString(s[i:])
			out.WriteRune(r)
			i += size
			continue
		}

		// Syllabic n, IME-style: "n'" is always ん; "n" before another
		// consonant or at the end of input is ん; "nn" collapses to ん
		// unless the second n opens a syllable of its own (onna, honn).
		if b == 'n' {
			switch {
			case i+1 < len(s) && s[i+1] == '\'':
				out.WriteString("ん")
				i += 2
				continue
			case i+1 == len(s):
				out.WriteString("ん")
				i++
				continue
			case s[i+1] == 'n':
				out.WriteString("ん")
				if i+2 == len(s) || !strings.ContainsRune("aiueoy", rune(s[i+2])) {
					i += 2
				} else {
					i++
				}
				continue
			case isASCIILetter(s[i+1]) && !strings.ContainsRune("aiueoy", rune(s[i+1])):
				out.WriteString("ん")
				i++
				continue
			}
		}

		// Sokuon: doubled consonant becomes っ.
		if isASCIILetter(b) && b != 'n' && !strings.ContainsRune("aiueo", rune(b)) &&
			i+1 < len(s) && s[i+1] == b {
			out.WriteString("っ")
			i++
			continue
		}

		matched := false
		for n := 3; n >= 1; n-- {
			if i+n > len(s) {
				continue
			}
			if kana, ok := kanaTable[s[i:i+n]]; ok {
				out.WriteString(kana)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(b)
			i++
		}
	}
	return out.String()
}

// foldKana lowers katakana to hiragana and resolves the long-vowel mark ー
// to the vowel of the preceding kana.
func foldKana(s string) string {
	var out []rune
	for _, r := range s {
		switch {
		case r >= 'ァ' && r <= 'ヶ':
			r -= 'ァ' - 'ぁ'
		case r == 'ー':
			if len(out) > 0 {
				if v, ok := vowelOf(out[len(out)-1]); ok {
					out = append(out, v)
				}
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

var vowelSets = map[rune]string{
	'あ': "あかがさざただなはばぱまやらわぁゃゎ",
	'い': "いきぎしじちぢにひびぴみりぃ",
	'う': "うくぐすずつづぬふぶぷむゆるゔぅゅ",
	'え': "えけげせぜてでねへべぺめれぇ",
	'お': "おこごそぞとどのほぼぽもよろをぉょ",
}

func vowelOf(r rune) (rune, bool) {
	for v, set := range vowelSets {
		if strings.ContainsRune(set, r) {
			return v, true
		}
	}
	return 0, false
}
