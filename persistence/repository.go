package persistence

import (
	"github.com/gatehouse-dev/gatehouse/user"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&user.User{},
		&user.Session{},
	)
}

func (r *Repository) CreateUser(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *Repository) GetUser(id uint) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByEmail(email string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UpdateUser(u *user.User) error {
	return r.db.Save(u).Error
}

func (r *Repository) DeleteUser(id uint) error {
	return r.db.Delete(&user.User{}, "id = ?", id).Error
}

func (r *Repository) CreateSession(s *user.Session) error {
	return r.db.Create(s).Error
}

func (r *Repository) GetSession(id string) (*user.Session, error) {
	var s user.Session
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) DeleteSession(id string) error {
	return r.db.Delete(&user.Session{}, "id = ?", id).Error
}
