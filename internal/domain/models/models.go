package models

import "cineconsole/proj/internal/domain/fields"

type Movie struct {
	ID          int                `json:"maPhim"`            // Backend-assigned id, immutable once created
	Title       string             `json:"tenPhim"`           // Movie title
	Alias       string             `json:"biDanh,omitempty"`  // URL slug generated by the backend
	Trailer     string             `json:"trailer,omitempty"` // Trailer URL
	Poster      string             `json:"hinhAnh,omitempty"` // Poster URL
	Description string             `json:"moTa,omitempty"`
	GroupCode   string             `json:"maNhom,omitempty"`
	ReleaseDate fields.ReleaseDate `json:"ngayKhoiChieu"`
	Rating      float64            `json:"danhGia"`   // 0..10
	Featured    bool               `json:"hot"`       // Shown in the featured carousel
	Showing     bool               `json:"dangChieu"` // Currently showing
	Upcoming    bool               `json:"sapChieu"`  // Coming soon
}

type Banner struct {
	ID      int    `json:"maBanner"`
	MovieID int    `json:"maPhim"`
	Image   string `json:"hinhAnh"`
}

type CinemaSystem struct {
	ID    string `json:"maHeThongRap"`
	Name  string `json:"tenHeThongRap"`
	Alias string `json:"biDanh,omitempty"`
	Logo  string `json:"logo,omitempty"`
}

// CinemaCluster is a venue of exactly one CinemaSystem. SystemID is stamped
// with the system the cluster was fetched for.
type CinemaCluster struct {
	ID       string          `json:"maCumRap"`
	Name     string          `json:"tenCumRap"`
	Address  string          `json:"diaChi,omitempty"`
	SystemID string          `json:"maHeThongRap,omitempty"`
	Rooms    []ScreeningRoom `json:"danhSachRap,omitempty"`
}

type RoomType string

const (
	Room2D    RoomType = "2D"
	Room3D    RoomType = "3D"
	RoomIMAX  RoomType = "IMAX"
	Room4DX   RoomType = "4DX"
	RoomDolby RoomType = "Dolby"
)

var RoomTypes = []RoomType{Room2D, Room3D, RoomIMAX, Room4DX, RoomDolby}

type RoomStatus string

const (
	RoomActive      RoomStatus = "active"
	RoomMaintenance RoomStatus = "maintenance"
	RoomSuspended   RoomStatus = "suspended"
)

var RoomStatuses = []RoomStatus{RoomActive, RoomMaintenance, RoomSuspended}

const (
	MinRoomSeats = 20
	MaxRoomSeats = 500
)

type ScreeningRoom struct {
	ID        fields.FlexString `json:"maRap"`
	Name      string            `json:"tenRap"`
	SeatCount int               `json:"soGhe,omitempty"`
	Type      RoomType          `json:"loaiPhong,omitempty"`
	Status    RoomStatus        `json:"trangThai,omitempty"`
	ClusterID string            `json:"maCumRap,omitempty"`
}

// MinTicketPrice is the lowest accepted ticket price in VND.
const MinTicketPrice = 50_000

type Showtime struct {
	ID        fields.FlexString   `json:"maLichChieu"`
	MovieID   int                 `json:"maPhim,omitempty"`
	RoomID    fields.FlexString   `json:"maRap"`
	RoomName  string              `json:"tenRap,omitempty"`
	ClusterID string              `json:"maCumRap,omitempty"`
	StartsAt  fields.WireDateTime `json:"ngayChieuGioChieu"`
	Price     int                 `json:"giaVe"`
	Duration  int                 `json:"thoiLuong,omitempty"` // Minutes
}

// ShowtimeRequest is the TaoLichChieu body.
type ShowtimeRequest struct {
	MovieID  int    `json:"maPhim"`
	StartsAt string `json:"ngayChieuGioChieu"` // dd/MM/yyyy HH:mm:ss
	RoomID   string `json:"maRap"`
	Price    int    `json:"giaVe"`
}

type User struct {
	Account   string `json:"taiKhoan"` // Immutable
	Password  string `json:"matKhau,omitempty"`
	FullName  string `json:"hoTen"`
	Email     string `json:"email"`
	Phone     string `json:"soDT"` // Some endpoints spell it soDt; decoding is case-insensitive
	GroupCode string `json:"maNhom,omitempty"`
	TypeID    string `json:"maLoaiNguoiDung"`
}

type UserType struct {
	ID   string `json:"maLoaiNguoiDung"`
	Name string `json:"tenLoai"`
}

const (
	UserTypeAdmin    = "QuanTri"
	UserTypeCustomer = "KhachHang"
)

// Account is the signed-in user as returned by DangNhap.
type Account struct {
	User
	AccessToken string `json:"accessToken"`
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
}

// MovieForm is an admin create/update submission.
type MovieForm struct {
	ID          int                `json:"maPhim" schema:"maPhim" validate:"gte=0"`
	Title       string             `json:"tenPhim" schema:"tenPhim" validate:"required,max=255"`
	Trailer     string             `json:"trailer" schema:"trailer" validate:"omitempty,url"`
	Description string             `json:"moTa" schema:"moTa" validate:"required"`
	GroupCode   string             `json:"maNhom" schema:"maNhom" validate:"required"`
	ReleaseDate fields.ReleaseDate `json:"ngayKhoiChieu" schema:"ngayKhoiChieu"`
	Rating      int                `json:"danhGia" schema:"danhGia" validate:"gte=0,lte=10"`
	Showing     bool               `json:"dangChieu" schema:"dangChieu"`
	Upcoming    bool               `json:"sapChieu" schema:"sapChieu"`
	Featured    bool               `json:"hot" schema:"hot"`
}

// Image is an uploaded poster.
type Image struct {
	Filename string
	Content  []byte
}

// RoomForm registers a screening room under a cluster.
type RoomForm struct {
	Name      string     `json:"tenRap" schema:"tenRap" validate:"required,max=100"`
	SeatCount int        `json:"soGhe" schema:"soGhe" validate:"min=20,max=500"`
	Type      RoomType   `json:"loaiPhong" schema:"loaiPhong" validate:"required,roomtype"`
	Status    RoomStatus `json:"trangThai" schema:"trangThai" validate:"omitempty,roomstatus"`
}

// ShowtimeForm is a showtime submission. StartsAt is the editable local
// datetime, converted to the wire format before sending.
type ShowtimeForm struct {
	MovieID  int    `json:"maPhim" schema:"maPhim" validate:"gt=0"`
	StartsAt string `json:"ngayChieuGioChieu" schema:"ngayChieuGioChieu" validate:"required"`
	Price    int    `json:"giaVe" schema:"giaVe" validate:"gte=50000" errorMsg:"Ticket price must be at least 50000 VND"`
}

type UserForm struct {
	Account   string `json:"taiKhoan" schema:"taiKhoan" validate:"required,alphanum,min=3,max=50"`
	Password  string `json:"matKhau" schema:"matKhau" validate:"required,min=6,max=100"`
	FullName  string `json:"hoTen" schema:"hoTen" validate:"required,max=100"`
	Email     string `json:"email" schema:"email" validate:"required,email"`
	Phone     string `json:"soDT" schema:"soDT" validate:"required,numeric,min=9,max=11"`
	GroupCode string `json:"maNhom" schema:"maNhom"`
	TypeID    string `json:"maLoaiNguoiDung" schema:"maLoaiNguoiDung" validate:"required"`
}

func (f UserForm) User() User {
	return User{
		Account:   f.Account,
		Password:  f.Password,
		FullName:  f.FullName,
		Email:     f.Email,
		Phone:     f.Phone,
		GroupCode: f.GroupCode,
		TypeID:    f.TypeID,
	}
}
