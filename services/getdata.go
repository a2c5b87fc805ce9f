package services

import (
	"teamflow/model"

	"gorm.io/gorm"
)

func GetUserData(db *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	if err := db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrgMember loads a user and checks they belong to the organization.
func GetOrgMember(db *gorm.DB, userID uint, orgID string) (*model.User, error) {
	var user model.User
	if err := db.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetOrgMembers(db *gorm.DB, orgID string) ([]model.User, error) {
	var members []model.User
	if err := db.Where("organization_id = ?", orgID).Order("name").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
