package cinema

import (
	"context"
	"net/url"
	"strconv"

	"cineconsole/proj/internal/domain/models"
)

type Credentials struct {
	Account  string `json:"taiKhoan"`
	Password string `json:"matKhau"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyNguoiDung/DangNhap", nil, creds)
}

func (c *Client) ListUserTypes(ctx context.Context, group string) ([]byte, error) {
	return c.get(ctx, "/QuanLyNguoiDung/LayDanhSachLoaiNguoiDung", url.Values{"MaNhom": {group}})
}

func (c *Client) ListUsers(ctx context.Context, group string) ([]byte, error) {
	return c.get(ctx, "/QuanLyNguoiDung/LayDanhSachNguoiDung", url.Values{"MaNhom": {group}})
}

func (c *Client) ListUsersPaged(ctx context.Context, group string, page, pageSize int) ([]byte, error) {
	return c.get(ctx, "/QuanLyNguoiDung/LayDanhSachNguoiDungPhanTrang", url.Values{
		"MaNhom":            {group},
		"soTrang":           {strconv.Itoa(page)},
		"soPhanTuTrenTrang": {strconv.Itoa(pageSize)},
	})
}

func (c *Client) SearchUsersPaged(ctx context.Context, group, keyword string, page, pageSize int) ([]byte, error) {
	return c.get(ctx, "/QuanLyNguoiDung/TimKiemNguoiDungPhanTrang", url.Values{
		"MaNhom":            {group},
		"tuKhoa":            {keyword},
		"soTrang":           {strconv.Itoa(page)},
		"soPhanTuTrenTrang": {strconv.Itoa(pageSize)},
	})
}

func (c *Client) GetUser(ctx context.Context, account string) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyNguoiDung/LayThongTinNguoiDung", url.Values{"taiKhoan": {account}}, nil)
}

func (c *Client) AddUser(ctx context.Context, user models.User) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyNguoiDung/ThemNguoiDung", nil, user)
}

func (c *Client) UpdateUser(ctx context.Context, user models.User) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyNguoiDung/CapNhatThongTinNguoiDung", nil, user)
}

func (c *Client) DeleteUser(ctx context.Context, account string) ([]byte, error) {
	return c.delete(ctx, "/QuanLyNguoiDung/XoaNguoiDung", url.Values{"TaiKhoan": {account}})
}
