package database

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"moodbot/domain"
)

const (
	DefaultUsersFile     = "users.csv"
	DefaultResponsesFile = "mood_data.csv"
	DefaultMaxRows       = 100000
)

var (
	usersHeader     = []string{"user_id", "profession"}
	responsesHeader = []string{"timestamp", "user_id", "profession", "quiz_type", "question", "answer", "score"}
)

// Формат времени, которым писал старый бот на pandas. Читаем его для совместимости
const legacyTimestampLayout = "2006-01-02 15:04:05.999999999"

// CSVStore хранит таблицы в двух CSV файлах. Каждая запись перезаписывает файл целиком,
// поэтому все операции идут через один мьютекс, а файл подменяется атомарно через rename
type CSVStore struct {
	mu            sync.Mutex
	usersPath     string
	responsesPath string
	location      *time.Location
	// MaxRows - порог, после которого пишем предупреждение: перезапись всего файла не рассчитана на большой объем
	MaxRows int
}

func NewCSVStore(dir, usersFile, responsesFile string, location *time.Location) *CSVStore {
	if usersFile == "" {
		usersFile = DefaultUsersFile
	}
	if responsesFile == "" {
		responsesFile = DefaultResponsesFile
	}
	if location == nil {
		location = time.Local
	}
	return &CSVStore{
		usersPath:     filepath.Join(dir, usersFile),
		responsesPath: filepath.Join(dir, responsesFile),
		location:      location,
		MaxRows:       DefaultMaxRows,
	}
}

func (s *CSVStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers()
}

func (s *CSVStore) UpsertUser(ctx context.Context, userID int64, profession string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readTable(s.usersPath, usersHeader)
	if err != nil {
		return false, fmt.Errorf("failed to read users: %w", err)
	}
	id := strconv.FormatInt(userID, 10)
	for _, row := range rows {
		if row[0] == id {
			return false, nil
		}
	}
	rows = append(rows, []string{id, profession})
	if err := writeTable(s.usersPath, usersHeader, rows); err != nil {
		return false, fmt.Errorf("failed to save user %d: %w", userID, err)
	}
	log.Info().Int64("user_id", userID).Str("profession", profession).Msg("New user saved")
	return true, nil
}

func (s *CSVStore) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	users, err := s.LoadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *CSVStore) AppendResponse(ctx context.Context, record domain.ResponseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readTable(s.responsesPath, responsesHeader)
	if err != nil {
		return fmt.Errorf("failed to read responses: %w", err)
	}
	rows = append(rows, []string{
		record.Timestamp.In(s.location).Format(time.RFC3339Nano),
		strconv.FormatInt(record.UserID, 10),
		record.Profession,
		string(record.QuizType),
		record.Question,
		record.Answer,
		strconv.Itoa(record.Score),
	})
	if s.MaxRows > 0 && len(rows) > s.MaxRows {
		log.Warn().Int("rows", len(rows)).Int("max_rows", s.MaxRows).Str("path", s.responsesPath).
			Msg("Responses table is larger than expected, every append rewrites the whole file")
	}
	if err := writeTable(s.responsesPath, responsesHeader, rows); err != nil {
		return fmt.Errorf("failed to save response of user %d: %w", record.UserID, err)
	}
	return nil
}

func (s *CSVStore) LoadResponses(ctx context.Context) ([]domain.ResponseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readTable(s.responsesPath, responsesHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to read responses: %w", err)
	}
	records := make([]domain.ResponseRecord, 0, len(rows))
	for i, row := range rows {
		record, err := s.parseResponse(row)
		if err != nil {
			return nil, fmt.Errorf("bad response row %d: %w", i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *CSVStore) loadUsers() ([]domain.User, error) {
	rows, err := readTable(s.usersPath, usersHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for i, row := range rows {
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad user row %d: %w", i+2, err)
		}
		users = append(users, domain.User{UserID: id, Profession: row[1]})
	}
	return users, nil
}

func (s *CSVStore) parseResponse(row []string) (domain.ResponseRecord, error) {
	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		ts, err = time.ParseInLocation(legacyTimestampLayout, row[0], s.location)
		if err != nil {
			return domain.ResponseRecord{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
		}
	}
	userID, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return domain.ResponseRecord{}, fmt.Errorf("bad user_id %q: %w", row[1], err)
	}
	score, err := strconv.Atoi(row[6])
	if err != nil {
		return domain.ResponseRecord{}, fmt.Errorf("bad score %q: %w", row[6], err)
	}
	return domain.ResponseRecord{
		Timestamp:  ts,
		UserID:     userID,
		Profession: row[2],
		QuizType:   domain.QuizType(row[3]),
		Question:   row[4],
		Answer:     row[5],
		Score:      score,
	}, nil
}

// readTable читает таблицу без заголовка. Отсутствующий или пустой файл - пустая таблица
func readTable(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !slices.Equal(rows[0], header) {
		return nil, fmt.Errorf("unexpected header %v in %s", rows[0], path)
	}
	return rows[1:], nil
}

// writeTable пишет таблицу во временный файл рядом с целевым и подменяет его через rename
func writeTable(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return err
	}
	if err = w.WriteAll(rows); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
