package discord

// Guild role IDs for the community server.
const (
	RoleArma3      = "958402329151963156"
	RoleComandante = "632621611417337876"
	RoleBrigada    = "793105882887880715"
	RoleSargento   = "607883924668022795"
	RoleCabo       = "793105366632235010"
	RoleSoldado    = "793105017909018685"

	RoleMedico       = "1292861291660181616"
	RoleAmetrallador = "1292861922630172692"
	RoleBreacher     = "1292861818133286915"
	RoleFusileroAT   = "1292862032789635112"
	RoleFusileroAA   = "1295488870485327902"
	RoleRadio        = "1292861593431965767"
	RoleZapador      = "1292861710578880542"
	RoleStaff        = "1087092702526582894"
	RoleEditor       = "1296086192013709365"
)

// rankLadder is checked top-down; the first role a member holds wins.
var rankLadder = []struct {
	roleID string
	rank   string
}{
	{RoleComandante, "Comandante"},
	{RoleBrigada, "Brigada"},
	{RoleSargento, "Sargento"},
	{RoleCabo, "Cabo"},
	{RoleSoldado, "Soldado"},
}

var specialtyLadder = []struct {
	roleID    string
	specialty string
}{
	{RoleStaff, "Staff"},
	{RoleEditor, "Editor"},
	{RoleMedico, "Médico"},
	{RoleAmetrallador, "Ametrallador"},
	{RoleBreacher, "Breacher"},
	{RoleZapador, "Zapador"},
	{RoleRadio, "Radio Operador"},
	{RoleFusileroAT, "Fusilero AT"},
	{RoleFusileroAA, "Fusilero AA"},
}

func hasRole(roleIDs []string, want string) bool {
	for _, id := range roleIDs {
		if id == want {
			return true
		}
	}
	return false
}

// RankFor maps a member's roles to a rank, "Invitado" when none match.
func RankFor(roleIDs []string) string {
	for _, entry := range rankLadder {
		if hasRole(roleIDs, entry.roleID) {
			return entry.rank
		}
	}
	return "Invitado"
}

// SpecialtyFor maps a member's roles to a specialty, "Fusilero" by default.
func SpecialtyFor(roleIDs []string) string {
	for _, entry := range specialtyLadder {
		if hasRole(roleIDs, entry.roleID) {
			return entry.specialty
		}
	}
	return "Fusilero"
}

// IsOperator reports whether the member belongs to the Arma 3 unit at all.
func IsOperator(roleIDs []string) bool {
	return hasRole(roleIDs, RoleArma3)
}

// IsStaff reports whether the member holds the staff role.
func IsStaff(roleIDs []string) bool {
	return hasRole(roleIDs, RoleStaff)
}
