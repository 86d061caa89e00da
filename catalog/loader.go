package catalog

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"moodbot/domain"
)

type fileCatalog struct {
	Professions [][]string          `yaml:"professions"`
	Answers     []fileAnswer        `yaml:"answers"`
	Quizzes     map[string]fileQuiz `yaml:"quizzes"`
}

type fileAnswer struct {
	Label string `yaml:"label"`
	Score int    `yaml:"score"`
}

type fileQuiz struct {
	Intro     string   `yaml:"intro"`
	Questions []string `yaml:"questions"`
}

// Load читает каталог из YAML файла. Разделы, которых нет в файле, берутся из встроенного каталога.
// Пустой путь означает встроенный каталог
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML каталога и проверяет его
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	c := Default()
	if len(fc.Professions) > 0 {
		c.Professions = fc.Professions
	}
	if len(fc.Answers) > 0 {
		c.Answers = make([]Answer, 0, len(fc.Answers))
		for _, a := range fc.Answers {
			c.Answers = append(c.Answers, Answer{Label: a.Label, Score: a.Score})
		}
	}
	for key, q := range fc.Quizzes {
		t := domain.QuizType(key)
		quiz := Quiz{Key: t, Intro: q.Intro, Questions: q.Questions}
		if base, ok := c.Quizzes[t]; ok && quiz.Intro == "" {
			quiz.Intro = base.Intro
		}
		c.Quizzes[t] = quiz
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrDefault загружает каталог из файла или возвращает встроенный при ошибке
func LoadOrDefault(path string) *Catalog {
	c, err := Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load catalog, using built-in one")
		return Default()
	}
	if path != "" {
		log.Info().Str("path", path).Msg("Catalog loaded from file")
	}
	return c
}
