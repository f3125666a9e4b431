package extract

import (
	"math"
	"strings"
	"unicode"
)

// Weights and normalization ceilings for the extraction quality score.
// Average word length saturates at 6 characters, density at 500 characters
// per page, and the word-to-noise ratio at 2.
const (
	wordLengthCeiling = 6.0
	densityCeiling    = 500.0
	noiseRatioCeiling = 2.0

	wordLengthWeight = 0.3
	densityWeight    = 0.4
	noiseRatioWeight = 0.3
)

// scoreConfidence estimates how clean an extraction is. Garbled output from
// scanned or badly encoded documents scores low through short average word
// length and a high share of non-word characters.
func scoreConfidence(text string, pageCount int) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	if pageCount < 1 {
		pageCount = 1
	}

	var totalWordLen int
	var validWords int
	for _, w := range words {
		runes := []rune(w)
		totalWordLen += len(runes)
		letters := 0
		for _, r := range runes {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 3 {
			validWords++
		}
	}

	var totalChars, noiseChars int
	for _, r := range text {
		totalChars++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			noiseChars++
		}
	}

	avgWordLength := float64(totalWordLen) / float64(len(words))
	charsPerPage := float64(totalChars) / float64(pageCount)
	wordToNoise := float64(validWords) / math.Max(float64(noiseChars), 1)

	wordLengthScore := clip01(avgWordLength / wordLengthCeiling)
	densityScore := clip01(charsPerPage / densityCeiling)
	noiseRatioScore := clip01(wordToNoise / noiseRatioCeiling)

	score := wordLengthWeight*wordLengthScore +
		densityWeight*densityScore +
		noiseRatioWeight*noiseRatioScore
	return clip01(math.Round(score*100) / 100)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
