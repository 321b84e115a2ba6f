// Package intake turns spreadsheet rows into Incident records by running the
// field normalizer and both classifiers over each row.
package intake

// Column is a logical column and the header aliases accepted for it, in
// preference order.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Logical column names.
const (
	ColID             = "id"
	ColName           = "name"
	ColSite           = "site"
	ColLoadDate       = "load_date"
	ColType           = "type"
	ColLocation       = "location"
	ColPotentialRisk  = "potential_risk"
	ColEventDate      = "event_date"
	ColYear           = "year"
	ColDescription    = "description"
	ColDaysAway       = "days_away"
	ColDaysRestricted = "days_restricted"
	ColFatality       = "fatality"
	ColPSETier        = "pse_tier"
	ColClientComm     = "client_communication"
)

// Columns lists every column the builder understands.
var Columns = []Column{
	{Name: ColID, Required: true, Aliases: []string{"ID", "ID INCIDENTE", "ID DEL INCIDENTE", "INCIDENT ID", "CODIGO", "NUMERO", "NRO"}},
	{Name: ColName, Required: true, Aliases: []string{"NOMBRE", "TITULO", "NOMBRE DEL INCIDENTE", "NAME", "TITLE"}},
	{Name: ColSite, Required: true, Aliases: []string{"SITIO", "OBRA", "SEDE", "CENTRO DE TRABAJO", "PROYECTO", "SITE"}},
	{Name: ColLoadDate, Required: true, Aliases: []string{"FECHA DE CARGA", "FECHA CARGA", "FECHA DE CREACION", "CREADO", "CREATED", "LOAD DATE", "FECHA"}},
	{Name: ColType, Required: true, Aliases: []string{"TIPO DE INCIDENTE", "TIPO INCIDENTE", "TIPO", "CLASIFICACION", "INCIDENT TYPE", "TYPE"}},
	{Name: ColLocation, Required: true, Aliases: []string{"UBICACION DE LA LESION", "PARTE DEL CUERPO", "ZONA AFECTADA", "LUGAR DE LA LESION", "UBICACION", "BODY PART", "LOCATION"}},
	{Name: ColPotentialRisk, Required: true, Aliases: []string{"RIESGO POTENCIAL", "POTENCIAL", "SEVERIDAD", "GRAVEDAD", "POTENTIAL RISK", "SEVERITY"}},

	{Name: ColEventDate, Aliases: []string{"FECHA DEL EVENTO", "FECHA EVENTO", "FECHA DE OCURRENCIA", "FECHA DEL INCIDENTE", "EVENT DATE"}},
	{Name: ColYear, Aliases: []string{"AÑO", "ANO", "YEAR"}},
	{Name: ColDescription, Aliases: []string{"DESCRIPCION", "DESCRIPCION DEL EVENTO", "DETALLE", "DESCRIPTION"}},
	{Name: ColDaysAway, Aliases: []string{"DIAS PERDIDOS", "DIAS DE BAJA", "DIAS AUSENCIA", "DAYS AWAY"}},
	{Name: ColDaysRestricted, Aliases: []string{"DIAS RESTRINGIDOS", "DIAS DE RESTRICCION", "DAYS RESTRICTED"}},
	{Name: ColFatality, Aliases: []string{"FATALIDAD", "FATAL", "FATALITY"}},
	{Name: ColPSETier, Aliases: []string{"NIVEL PSE", "PSE", "TIER PSE", "TIER"}},
	{Name: ColClientComm, Aliases: []string{"COMUNICACION AL CLIENTE", "COMUNICADO AL CLIENTE", "CLIENT COMMUNICATION"}},
}
