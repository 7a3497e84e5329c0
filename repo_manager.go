package accounts

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() repository.Repository[*User]
	SecurityTokens() repository.Repository[*SecurityToken]
}

func NewUsersRepository(db *bun.DB) repository.Repository[*User] {
	handlers := repository.ModelHandlers[*User]{
		NewRecord: func() *User {
			return &User{}
		},
		GetID: func(record *User) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *User, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewSecurityTokensRepository(db *bun.DB) repository.Repository[*SecurityToken] {
	handlers := repository.ModelHandlers[*SecurityToken]{
		NewRecord: func() *SecurityToken {
			return &SecurityToken{}
		},
		GetID: func(record *SecurityToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *SecurityToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db             *bun.DB
	users          repository.Repository[*User]
	securityTokens repository.Repository[*SecurityToken]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		securityTokens: NewSecurityTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.securityTokens == nil {
		return errors.New("repository securityTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() repository.Repository[*User] {
	return m.users
}

func (m mngr) SecurityTokens() repository.Repository[*SecurityToken] {
	return m.securityTokens
}
