// Package seed creates the MusicFestival schema and fills it with
// deterministic sample data, so the catalog queries and join-strategy
// benchmarks are runnable against a fresh MariaDB or MySQL server.
package seed

// tables holds the schema in creation order. Parents precede children, so
// the statements can run with foreign key checks on; drops run in reverse.
// The named secondary indexes are the ones the hinted catalog variants
// force, so they must exist under exactly these names.
var tables = []struct {
	name string
	ddl  string
}{
	{"Location", `
CREATE TABLE Location (
    location_id INT NOT NULL AUTO_INCREMENT,
    city VARCHAR(100) NOT NULL,
    country VARCHAR(100) NOT NULL,
    continent VARCHAR(50) NOT NULL,
    PRIMARY KEY (location_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Festival", `
CREATE TABLE Festival (
    festival_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(150) NOT NULL,
    year INT NOT NULL,
    location_id INT NOT NULL,
    PRIMARY KEY (festival_id),
    KEY idx_festival_year (year),
    CONSTRAINT fk_festival_location FOREIGN KEY (location_id) REFERENCES Location (location_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"FestivalDay", `
CREATE TABLE FestivalDay (
    day_id INT NOT NULL AUTO_INCREMENT,
    festival_id INT NOT NULL,
    festival_date DATE NOT NULL,
    PRIMARY KEY (day_id),
    KEY idx_festivalday_date (festival_date),
    CONSTRAINT fk_day_festival FOREIGN KEY (festival_id) REFERENCES Festival (festival_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Stage", `
CREATE TABLE Stage (
    stage_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(100) NOT NULL,
    capacity INT NOT NULL,
    PRIMARY KEY (stage_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Event", `
CREATE TABLE Event (
    event_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(150) NOT NULL,
    day_id INT NOT NULL,
    stage_id INT NOT NULL,
    PRIMARY KEY (event_id),
    CONSTRAINT fk_event_day FOREIGN KEY (day_id) REFERENCES FestivalDay (day_id),
    CONSTRAINT fk_event_stage FOREIGN KEY (stage_id) REFERENCES Stage (stage_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Artist", `
CREATE TABLE Artist (
    artist_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(100) NOT NULL,
    pseudonym VARCHAR(100),
    genre VARCHAR(100) NOT NULL,
    subgenre VARCHAR(100),
    birthdate DATE NOT NULL,
    PRIMARY KEY (artist_id),
    KEY idx_artist_genre (genre)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Band", `
CREATE TABLE Band (
    band_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(100) NOT NULL,
    PRIMARY KEY (band_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"PerformanceType", `
CREATE TABLE PerformanceType (
    type_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(50) NOT NULL,
    PRIMARY KEY (type_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Performance", `
CREATE TABLE Performance (
    performance_id INT NOT NULL AUTO_INCREMENT,
    event_id INT NOT NULL,
    type_id INT NOT NULL,
    artist_id INT,
    band_id INT,
    PRIMARY KEY (performance_id),
    KEY idx_performance_artist (artist_id),
    CONSTRAINT fk_performance_event FOREIGN KEY (event_id) REFERENCES Event (event_id),
    CONSTRAINT fk_performance_type FOREIGN KEY (type_id) REFERENCES PerformanceType (type_id),
    CONSTRAINT fk_performance_artist FOREIGN KEY (artist_id) REFERENCES Artist (artist_id),
    CONSTRAINT fk_performance_band FOREIGN KEY (band_id) REFERENCES Band (band_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Visitor", `
CREATE TABLE Visitor (
    visitor_id INT NOT NULL AUTO_INCREMENT,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    PRIMARY KEY (visitor_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"PaymentMethod", `
CREATE TABLE PaymentMethod (
    method_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(50) NOT NULL,
    PRIMARY KEY (method_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Ticket", `
CREATE TABLE Ticket (
    ticket_id INT NOT NULL AUTO_INCREMENT,
    event_id INT NOT NULL,
    visitor_id INT NOT NULL,
    method_id INT NOT NULL,
    price DECIMAL(8,2) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (ticket_id),
    KEY idx_ticket_visitor (visitor_id),
    CONSTRAINT fk_ticket_event FOREIGN KEY (event_id) REFERENCES Event (event_id),
    CONSTRAINT fk_ticket_visitor FOREIGN KEY (visitor_id) REFERENCES Visitor (visitor_id),
    CONSTRAINT fk_ticket_method FOREIGN KEY (method_id) REFERENCES PaymentMethod (method_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Review", `
CREATE TABLE Review (
    review_id INT NOT NULL AUTO_INCREMENT,
    performance_id INT NOT NULL,
    visitor_id INT NOT NULL,
    artist_rating INT NOT NULL,
    sound_rating INT NOT NULL,
    stage_rating INT NOT NULL,
    organization_rating INT NOT NULL,
    overall_rating INT NOT NULL,
    PRIMARY KEY (review_id),
    KEY idx_review_performance (performance_id),
    KEY idx_review_visitor (visitor_id),
    CONSTRAINT fk_review_performance FOREIGN KEY (performance_id) REFERENCES Performance (performance_id),
    CONSTRAINT fk_review_visitor FOREIGN KEY (visitor_id) REFERENCES Visitor (visitor_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"ExperienceLevel", `
CREATE TABLE ExperienceLevel (
    level_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(50) NOT NULL,
    PRIMARY KEY (level_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"StaffRole", `
CREATE TABLE StaffRole (
    role_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(50) NOT NULL,
    PRIMARY KEY (role_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Staff", `
CREATE TABLE Staff (
    staff_id INT NOT NULL AUTO_INCREMENT,
    name VARCHAR(100) NOT NULL,
    age INT NOT NULL,
    level_id INT NOT NULL,
    role_id INT NOT NULL,
    PRIMARY KEY (staff_id),
    CONSTRAINT fk_staff_level FOREIGN KEY (level_id) REFERENCES ExperienceLevel (level_id),
    CONSTRAINT fk_staff_role FOREIGN KEY (role_id) REFERENCES StaffRole (role_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"Staff_Assignment", `
CREATE TABLE Staff_Assignment (
    assignment_id INT NOT NULL AUTO_INCREMENT,
    staff_id INT NOT NULL,
    event_id INT NOT NULL,
    role_id INT NOT NULL,
    PRIMARY KEY (assignment_id),
    CONSTRAINT fk_assignment_staff FOREIGN KEY (staff_id) REFERENCES Staff (staff_id),
    CONSTRAINT fk_assignment_event FOREIGN KEY (event_id) REFERENCES Event (event_id),
    CONSTRAINT fk_assignment_role FOREIGN KEY (role_id) REFERENCES StaffRole (role_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Schema returns the CREATE TABLE statements in creation order.
func Schema() []string {
	stmts := make([]string, len(tables))
	for i, t := range tables {
		stmts[i] = t.ddl
	}
	return stmts
}

// Tables returns the table names in creation order.
func Tables() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names
}

// DropStatements returns DROP TABLE IF EXISTS statements in reverse creation
// order, so children go before their parents.
func DropStatements() []string {
	stmts := make([]string, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+tables[i].name)
	}
	return stmts
}
