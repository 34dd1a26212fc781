package domain

const (
	RoleAdmin = "admin"
)

// Lot statuses as stored in lotes.status.
const (
	LotAvailable = "disponivel"
	LotSold      = "vendido"
	LotReserved  = "reservado"
)

var LotStatuses = []string{LotAvailable, LotSold, LotReserved}

func ValidLotStatus(s string) bool {
	for _, v := range LotStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Config value type tags.
const (
	ConfigString  = "string"
	ConfigNumber  = "number"
	ConfigBoolean = "boolean"
	ConfigJSON    = "json"
)

func ValidConfigType(t string) bool {
	switch t {
	case ConfigString, ConfigNumber, ConfigBoolean, ConfigJSON:
		return true
	}
	return false
}

// Activity actions.
const (
	ActionCreate         = "CREATE"
	ActionUpdate         = "UPDATE"
	ActionDelete         = "DELETE"
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionStatusChange   = "STATUS_CHANGE"
	ActionToggleStatus   = "TOGGLE_STATUS"
	ActionReorder        = "REORDER"
	ActionBulkUpdate     = "BULK_UPDATE"
	ActionBackupCreate   = "BACKUP_CREATE"
	ActionBackupDownload = "BACKUP_DOWNLOAD"
	ActionBackupImport   = "BACKUP_IMPORT"
	ActionBackupDelete   = "BACKUP_DELETE"
	ActionSystemReset    = "SYSTEM_RESET"
)

// Table names, also used as activity targets.
const (
	TableUsers      = "usuarios"
	TableLots       = "lotes"
	TableSlides     = "carrossel_slides"
	TableConfigs    = "configuracoes"
	TableActivities = "atividades"
	TableBackups    = "backups"
	TableSystem     = "system"
)

const (
	BackupManual    = "manual"
	BackupScheduled = "scheduled"
)

// ResetConfirmation must be sent verbatim to wipe the store.
const ResetConfirmation = "RESET_COMPLETO"

// SnapshotVersion is stamped in every exported snapshot.
const SnapshotVersion = "1.0.0"

// PublicConfigKeys are the configuration keys exposed without authentication.
var PublicConfigKeys = []string{"telefone", "email", "endereco", "titulo_site", "subtitulo"}
