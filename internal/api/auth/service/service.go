package authService

import (
	"context"
	"mime/multipart"

	"VisageAuth/internal/api/auth"
	authRepository "VisageAuth/internal/api/auth/repository"
	"VisageAuth/internal/entity"
	"VisageAuth/pkg/bcrypt"
	"VisageAuth/pkg/descriptor"
	"VisageAuth/pkg/redis"
	"VisageAuth/pkg/s3"
	"VisageAuth/pkg/utils"

	"github.com/sirupsen/logrus"
)

type AuthService interface {
	Account() AccountDomain
	Face() FaceDomain
	Session() SessionDomain
	Auth() AuthDomain
	GetRepository() authRepository.Repository
}

type AccountDomain interface {
	Register(c context.Context, req auth.RegisterAccountRequest) (auth.AccountResponse, error)
	GetByID(c context.Context, id int64) (auth.AccountResponse, error)
	List(c context.Context, page, limit int) (auth.AccountListResponse, error)
	Update(c context.Context, id int64, req auth.UpdateAccountRequest) (auth.AccountResponse, error)
	Deactivate(c context.Context, id int64) error
	UpdateProfilePhoto(c context.Context, accountID int64, photoFile *multipart.FileHeader) (*auth.ProfilePhotoResponse, error)
	VerifyPassword(c context.Context, account entity.Account, password string) error
}

type FaceDomain interface {
	Enroll(c context.Context, accountID int64, req auth.EnrollFaceRequest, photoFile *multipart.FileHeader) (auth.EnrollmentResponse, error)
	EnrollBatch(c context.Context, accountID int64, req auth.EnrollFaceBatchRequest) ([]auth.EnrollmentResponse, error)
	ListByAccount(c context.Context, accountID int64) ([]auth.EnrollmentResponse, error)
	SetPrimary(c context.Context, accountID int64, enrollmentID int64) (bool, error)
	Delete(c context.Context, accountID int64, enrollmentID int64) (bool, error)
	DeleteAllForAccount(c context.Context, accountID int64) (bool, error)
	Match(c context.Context, probe descriptor.Vector) (auth.RecognitionResult, error)
	Stats(c context.Context) (auth.EnrollmentStats, error)
}

type SessionDomain interface {
	Issue(c context.Context, accountID int64) (string, int64, error)
	Verify(c context.Context, token string) (auth.VerifyTokenResult, error)
	Refresh(c context.Context, token string) (auth.AuthResult, error)
	RecordLogin(c context.Context, accountID int64, method entity.LoginMethod, ip, userAgent string)
	History(c context.Context, accountID int64, limit int) ([]auth.LoginHistoryEntry, error)
	Logout(c context.Context, token string) error
}

type AuthDomain interface {
	LoginWithPassword(c context.Context, req auth.LoginRequest, ip, userAgent string) (auth.AuthResult, error)
	LoginWithFace(c context.Context, req auth.FaceLoginRequest, ip, userAgent string) (auth.AuthResult, error)
}

type authService struct {
	log            *logrus.Logger
	authRepository authRepository.Repository
	redisServer    redis.IRedis
	s3Client       s3.ItfS3
	bcryptUtils    bcrypt.IBcrypt
	utils          utils.IUtils

	accountDomain AccountDomain
	faceDomain    FaceDomain
	sessionDomain SessionDomain
	authDomain    AuthDomain
}

func (a *authService) Account() AccountDomain {
	return a.accountDomain
}

func (a *authService) Face() FaceDomain {
	return a.faceDomain
}

func (a *authService) Session() SessionDomain {
	return a.sessionDomain
}

func (a *authService) Auth() AuthDomain {
	return a.authDomain
}

func (a *authService) GetRepository() authRepository.Repository {
	return a.authRepository
}

type accountDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	s3Client    s3.ItfS3
	bcryptUtils bcrypt.IBcrypt
	utils       utils.IUtils
}

type faceDomainImpl struct {
	log       *logrus.Logger
	repo      authRepository.Repository
	s3Client  s3.ItfS3
	utils     utils.IUtils
	threshold float64
}

type sessionDomainImpl struct {
	log  *logrus.Logger
	repo authRepository.Repository
}

type authDomainImpl struct {
	log           *logrus.Logger
	repo          authRepository.Repository
	redisServer   redis.IRedis
	accountDomain AccountDomain
	faceDomain    FaceDomain
	sessionDomain SessionDomain
}

func New(log *logrus.Logger,
	authRepo authRepository.Repository,
	redisServer redis.IRedis,
	s3Client s3.ItfS3,
	bcryptUtils bcrypt.IBcrypt,
	utils utils.IUtils,
) AuthService {
	accountDomain := &accountDomainImpl{log: log, repo: authRepo, s3Client: s3Client, bcryptUtils: bcryptUtils, utils: utils}
	faceDomain := &faceDomainImpl{log: log, repo: authRepo, s3Client: s3Client, utils: utils, threshold: matchThreshold()}
	sessionDomain := &sessionDomainImpl{log: log, repo: authRepo}

	return &authService{
		log:            log,
		authRepository: authRepo,
		redisServer:    redisServer,
		s3Client:       s3Client,
		bcryptUtils:    bcryptUtils,
		utils:          utils,

		accountDomain: accountDomain,
		faceDomain:    faceDomain,
		sessionDomain: sessionDomain,
		authDomain: &authDomainImpl{
			log:           log,
			repo:          authRepo,
			redisServer:   redisServer,
			accountDomain: accountDomain,
			faceDomain:    faceDomain,
			sessionDomain: sessionDomain,
		},
	}
}
