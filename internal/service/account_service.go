package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

// tempPasswordAlphabet avoids ambiguous characters since the passwords get
// read out or printed for distribution.
const tempPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

type accountStudentRepository interface {
	ListUnprovisioned(ctx context.Context, orgID string) ([]models.Student, error)
	LinkAccount(ctx context.Context, studentID, userID string, at time.Time) error
}

type accountUserRepository interface {
	Create(ctx context.Context, user *models.User) error
}

// AccountServiceConfig tunes bulk provisioning.
type AccountServiceConfig struct {
	TempPasswordLength int
	UsernamePrefix     string
}

// AccountService provisions student logins in bulk from the roster.
type AccountService struct {
	students accountStudentRepository
	users    accountUserRepository
	logger   *zap.Logger
	cfg      AccountServiceConfig
}

// NewAccountService wires an AccountService.
func NewAccountService(students accountStudentRepository, users accountUserRepository, logger *zap.Logger, cfg AccountServiceConfig) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TempPasswordLength < 8 {
		cfg.TempPasswordLength = 10
	}
	return &AccountService{students: students, users: users, logger: logger, cfg: cfg}
}

// ProvisionAccounts creates a login for every roster student of the
// organization that has none yet. Each account gets a username derived from
// the student number and a one-time temporary password returned only in this
// response. Failures on individual students skip rather than abort the run.
func (s *AccountService) ProvisionAccounts(ctx context.Context, orgID string) (*dto.ProvisionResult, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}

	students, err := s.students.ListUnprovisioned(ctx, orgID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}

	result := &dto.ProvisionResult{Created: []dto.ProvisionedAccount{}}
	for _, student := range students {
		account, err := s.provisionOne(ctx, student)
		if err != nil {
			s.logger.Warn("skipping student during provisioning",
				zap.String("student_no", student.StudentNo), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Created = append(result.Created, *account)
	}

	s.logger.Info("bulk provisioning finished",
		zap.String("org_id", orgID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *AccountService) provisionOne(ctx context.Context, student models.Student) (*dto.ProvisionedAccount, error) {
	password, err := s.generateTempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	base := s.usernameFor(student)
	var user *models.User
	for attempt := 0; attempt < 3; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s%d", base, attempt+1)
		}
		candidate := &models.User{
			Username:     username,
			Email:        student.Email,
			PasswordHash: string(hash),
			Role:         models.RoleStudent,
			Active:       true,
		}
		err = s.users.Create(ctx, candidate)
		if err == nil {
			user = candidate
			break
		}
		if !errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
	}
	if user == nil {
		return nil, fmt.Errorf("username %q exhausted retries", base)
	}

	if err := s.students.LinkAccount(ctx, student.ID, user.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return &dto.ProvisionedAccount{
		StudentID:    student.ID,
		StudentNo:    student.StudentNo,
		StudentName:  student.FullName(),
		Username:     user.Username,
		TempPassword: password,
	}, nil
}

func (s *AccountService) usernameFor(student models.Student) string {
	cleaned := strings.ToLower(strings.ReplaceAll(student.StudentNo, "-", ""))
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return s.cfg.UsernamePrefix + cleaned
}

func (s *AccountService) generateTempPassword() (string, error) {
	out := make([]byte, s.cfg.TempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
