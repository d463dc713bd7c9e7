package models

// Role определяет роль пользователя в системе.
// Роль вычисляется ровно один раз на запрос/соединение и дальше
// передаётся явно, а не выводится заново в каждой проверке доступа.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) IsDoctor() bool {
	return r == RoleDoctor
}
