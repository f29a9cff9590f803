// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultWords is the embedded fallback used when no word list file exists.
var defaultWords = strings.Fields(`the of and to in is you that it he was for on are as with his they
at be this have from or one had by word but not what all were we when your can said there use an each
which she do how their if will up other about out many then them these so some her would make like him
into time has look two more write go see number no way could people my than first water been call who
oil its now find long down day did get come made may part over new sound take only little work know
place year live me back give most very after thing our just name good sentence man think say great
where help through much before line right too mean old any same tell boy follow came want show also
around form three small set put end does another well large must big even such because turn here why
ask went men read need land different home us move try kind hand picture again change off play spell
air away animal house point page letter mother answer found study still learn should world high every
near add food between own below country plant last school father keep tree never start city earth eye
light thought head under story saw left until children side feet car mile night walk white sea began
grow took river four carry state once book hear stop without second later miss idea enough eat face
watch far real almost let above girl sometimes mountain cut young talk soon list song being leave
family body music color stand sun question fish area mark dog horse bird problem complete room knew
since ever piece told usually friend easy heard order red door sure become top ship across today
during short better best however low hours black products happened whole measure remember early waves
reached listen wind rock space covered fast several hold himself toward five step morning passed
vowel true hundred against pattern numeral table north slowly money map pulled draw voice seen cold
cried plan notice south sing war ground fall king town unit figure certain field travel wood fire upon`)

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadWordsOrDefault loads the word list at path, falling back to the
// embedded English list when the file is missing.
func LoadWordsOrDefault(path string) ([]string, error) {
	words, err := LoadWords(path)
	if err == nil {
		return words, nil
	}
	if os.IsNotExist(err) {
		return DefaultWords(), nil
	}
	return nil, err
}

// DefaultWords returns a copy of the embedded English word list.
func DefaultWords() []string {
	out := make([]string, len(defaultWords))
	copy(out, defaultWords)
	return out
}
