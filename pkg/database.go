package merger

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// LoadAlignment reads the coarse alignment constants valid for the given run
// from the conditions database.
func LoadAlignment(dbConn *sqlx.DB, runNumber int) ([]AlignmentConstants, error) {
	constants, err := getAlignmentFromDB(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting alignment constants from database: %w", err)
		logger.Error(errMessage.Error())
		return nil, errMessage
	}
	return constants, nil
}

func getAlignmentFromDB(db *sqlx.DB, runNumber int) ([]AlignmentConstants, error) {
	query := "SELECT DutX, DutY, Axis, C0, C1, Sigma FROM DutAlignment WHERE MinRun <= %d and MaxRun >= %d ORDER BY DutX, Axis"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Alignment constants read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	constants := make([]AlignmentConstants, 0)
	for rows.Next() {
		var c AlignmentConstants
		var axis int32
		if err := rows.Scan(&c.DutX, &c.DutY, &axis, &c.C0, &c.C1, &c.Sigma); err != nil {
			errMessage := fmt.Errorf("error scanning alignment row: %w", err)
			return nil, errMessage
		}
		c.Axis = Axis(axis)
		constants = append(constants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return constants, nil
}
