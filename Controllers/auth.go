package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Caribou/Config"
	"Caribou/Models"
	"Caribou/Validation"
	"Caribou/middleware"
)

// AuthController handles login, logout and user administration.
type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func (a *AuthController) Login(ctx *fiber.Ctx) error {
	var input Models.LoginRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	var user Models.User
	result := a.DB.Preload("Profile").Where("username = ? AND is_active = ?", input.Username, true).First(&user)
	if result.Error != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Incorrect username or password"})
	}
	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(input.Password)); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Incorrect username or password"})
	}

	claims := jwt.RegisteredClaims{
		Issuer:    strconv.Itoa(int(user.ID)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Config.Cfg.JWTSecret))
	if err != nil {
		zap.L().Error("failed to sign token", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not log in"})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged in", "user": user})
}

func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out"})
}

func (a *AuthController) Me(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not logged in."})
	}
	return ctx.JSON(user)
}

// RegisterUser creates a user together with its profile and assignment sets.
// Admin only (enforced on the route).
func (a *AuthController) RegisterUser(ctx *fiber.Ctx) error {
	var input Models.RegisterUserRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create user"})
	}

	user := Models.User{
		Username: input.Username,
		FullName: input.FullName,
		Email:    input.Email,
		Password: hash,
		IsActive: true,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := Models.Profile{UserID: user.ID, Role: input.Role}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		if err := replaceAssignments(tx, &profile, input.StoreIDs, input.AreaIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to register user", zap.String("username", input.Username), zap.Error(err))
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A user with this username may already exist"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered", "id": user.ID})
}

func (a *AuthController) FetchUsers(ctx *fiber.Ctx) error {
	var users []Models.User
	if err := a.DB.Preload("Profile").Preload("Profile.Stores").Preload("Profile.Areas").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve users"})
	}
	return ctx.JSON(users)
}

// UpdateProfile changes a user's role and replaces their store/area sets.
func (a *AuthController) UpdateProfile(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID"})
	}

	var input Models.UpdateProfileRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	var profile Models.Profile
	if err := a.DB.Where("user_id = ?", id).First(&profile).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&profile).Update("role", input.Role).Error; err != nil {
			return err
		}
		return replaceAssignments(tx, &profile, input.StoreIDs, input.AreaIDs)
	})
	if err != nil {
		zap.L().Error("failed to update profile", zap.Int("user_id", id), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update profile"})
	}
	return ctx.JSON(fiber.Map{"message": "Profile updated"})
}

func replaceAssignments(tx *gorm.DB, profile *Models.Profile, storeIDs, areaIDs []uint) error {
	var stores []Models.Store
	if len(storeIDs) > 0 {
		if err := tx.Find(&stores, storeIDs).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(profile).Association("Stores").Replace(stores); err != nil {
		return err
	}

	var areas []Models.Area
	if len(areaIDs) > 0 {
		if err := tx.Find(&areas, areaIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(profile).Association("Areas").Replace(areas)
}
