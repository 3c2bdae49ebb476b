package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[mrand.Intn(len(commonSurnames))]
	nameLength := mrand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[mrand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

const digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := mrand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := mrand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[mrand.Intn(len(digits))])
	}

	return username
}

// 随机用户大多是普通用户，少数是置业顾问
func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if mrand.Intn(5) == 0 {
		role = domain.RoleAgent
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Phone:        gofakeit.Phone(),
		Role:         role,
	}

	return user, nil
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand 不可用时退回到 math/rand
		return mrand.Intn(n)
	}
	return int(v.Int64())
}

func GenerateRandomOTP() string {
	otp := make([]byte, 6)
	for i := range otp {
		otp[i] = digits[randomIndex(len(digits))]
	}
	return string(otp)
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[randomIndex(len(letters))]
	}
	return string(randomPassword)
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateUnsubscribeToken 生成退订链接中使用的令牌
func GenerateUnsubscribeToken() (string, error) {
	return gonanoid.Generate(tokenAlphabet, 32)
}

// ProjectSlug 把楼盘名转换为 URL 中使用的 slug，中文会被转写为拼音。
// 纯数字的结果会加上 project- 前缀，否则会被当作楼盘 ID 解析
func ProjectSlug(name string) string {
	s := slug.Make(name)
	if isDigits(s) {
		s = "project-" + s
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var projectSuffixes = []string{"花园", "公馆", "名苑", "雅居", "府", "湾", "壹号"}

var amenities = []string{"泳池", "健身房", "儿童乐园", "地下停车场", "24小时安保", "会所", "屋顶花园", "商业街"}

var projectStatuses = []domain.ProjectStatus{
	domain.ProjectStatusPreSale,
	domain.ProjectStatusConstruction,
	domain.ProjectStatusReady,
	domain.ProjectStatusSoldOut,
}

func GenerateRandomProject() *domain.Project {
	city := gofakeit.City()
	name := gofakeit.LastName() + projectSuffixes[mrand.Intn(len(projectSuffixes))]

	picked := make([]string, 0)
	for _, a := range amenities {
		if gofakeit.Bool() {
			picked = append(picked, a)
		}
	}

	images := make([]string, gofakeit.Number(1, 4))
	for i := range images {
		images[i] = gofakeit.URL()
	}

	return &domain.Project{
		Slug:        ProjectSlug(fmt.Sprintf("%s %s %d", name, city, gofakeit.Number(100, 999))),
		Name:        name,
		Summary:     fmt.Sprintf("%s %s 的新楼盘", city, gofakeit.Street()),
		Description: fmt.Sprintf("%s 位于 %s，由 %s 开发建设。", name, city, gofakeit.Company()),
		City:        city,
		Address:     gofakeit.Street(),
		Latitude:    gofakeit.Float64Range(-55, 60),
		Longitude:   gofakeit.Float64Range(-120, 150),
		Status:      projectStatuses[mrand.Intn(len(projectStatuses))],
		PriceFrom:   int64(gofakeit.Number(50_000, 900_000)) * 100,
		Currency:    "USD",
		Bedrooms:    int32(gofakeit.Number(1, 5)),
		AreaFrom:    float64(gofakeit.Number(35, 240)),
		IsFeatured:  mrand.Intn(4) == 0,
		CoverImage:  images[0],
		Images:      images,
		Amenities:   picked,
	}
}

func GenerateRandomClient() *domain.Client {
	return &domain.Client{
		FullName: gofakeit.Name(),
		Email:    strings.ToLower(gofakeit.Email()),
		Phone:    gofakeit.Phone(),
		Notes:    gofakeit.Company(),
	}
}

var operationTypes = []domain.OperationType{
	domain.OperationTypeSale,
	domain.OperationTypeRent,
	domain.OperationTypeReservation,
}

var operationStatuses = []domain.OperationStatus{
	domain.OperationStatusOpen,
	domain.OperationStatusClosed,
	domain.OperationStatusCancelled,
}

func GenerateRandomOperation(clientID, projectID int64) *domain.Operation {
	op := &domain.Operation{
		ClientID:  clientID,
		ProjectID: projectID,
		Type:      operationTypes[mrand.Intn(len(operationTypes))],
		Amount:    int64(gofakeit.Number(1_000, 500_000)) * 100,
		Currency:  "USD",
		Status:    operationStatuses[mrand.Intn(len(operationStatuses))],
	}

	if op.Status == domain.OperationStatusClosed {
		closedAt := gofakeit.PastDate()
		op.ClosedAt = &closedAt
	}

	return op
}
