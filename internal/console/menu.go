// Package console implements the interactive text menu over the user use case.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"user_service/internal/domain"
	"user_service/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sirupsen/logrus"
)

var errInput = errors.New("invalid input")

type userInput struct {
	Name  string `validate:"notblank"`
	Email string `validate:"required,email"`
	Age   int    `validate:"gt=0"`
}

var inputMessages = map[string]string{
	"Name.notblank":  "Name is required",
	"Email.required": "Email is required",
	"Email.email":    "Invalid email format",
	"Age.gt":         "Age must be positive",
}

type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	users    usecase.UserUseCase
	validate *validator.Validate
	log      *logrus.Logger
}

func NewMenu(in io.Reader, out io.Writer, users usecase.UserUseCase, logger *logrus.Logger) (*Menu, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("failed to register notblank validation: %w", err)
	}
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		users:    users,
		validate: v,
		log:      logger,
	}, nil
}

// Run serves menu choices until the user picks 0, input ends or ctx is done.
// Action failures are printed and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()

		line, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			m.println("Invalid choice, please try again.")
			continue
		}

		var actionErr error
		switch choice {
		case 1:
			actionErr = m.createUser(ctx)
		case 2:
			actionErr = m.findUserByID(ctx)
		case 3:
			actionErr = m.listUsers(ctx)
		case 4:
			actionErr = m.updateUser(ctx)
		case 5:
			actionErr = m.deleteUser(ctx)
		case 0:
			m.println("Bye.")
			return nil
		default:
			m.println("Invalid choice, please try again.")
			continue
		}
		if actionErr != nil {
			m.report(actionErr)
		}
	}
}

func (m *Menu) printMenu() {
	m.println("")
	m.println("USER_SERVICE")
	m.println("1. Create user")
	m.println("2. Find user by ID")
	m.println("3. Show all users")
	m.println("4. Update user")
	m.println("5. Delete user")
	m.println("0. Exit")
	m.print("Choose an action: ")
}

func (m *Menu) createUser(ctx context.Context) error {
	name := m.prompt("Enter name: ")
	email := m.prompt("Enter email: ")
	age, err := m.promptInt("Enter age: ")
	if err != nil {
		return err
	}

	input := userInput{Name: name, Email: strings.TrimSpace(email), Age: age}
	if err := m.check(input); err != nil {
		return err
	}

	created, err := m.users.CreateUser(ctx, &domain.UserRequest{Name: input.Name, Email: input.Email, Age: input.Age})
	if err != nil {
		return err
	}
	m.println("User created: " + formatUser(created))
	return nil
}

func (m *Menu) findUserByID(ctx context.Context) error {
	id, err := m.promptID("Enter user ID: ")
	if err != nil {
		return err
	}
	user, err := m.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	m.println("Found user: " + formatUser(user))
	return nil
}

func (m *Menu) listUsers(ctx context.Context) error {
	users, err := m.users.GetAllUsers(ctx)
	if errors.Is(err, domain.ErrNoUsers) {
		m.println("The user list is empty.")
		return nil
	}
	if err != nil {
		return err
	}
	m.println("Users:")
	for i := range users {
		m.println(formatUser(&users[i]))
	}
	return nil
}

func (m *Menu) updateUser(ctx context.Context) error {
	id, err := m.promptID("Enter the ID of the user to update: ")
	if err != nil {
		return err
	}
	current, err := m.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	m.println("Current data: " + formatUser(current))

	req := &domain.UserRequest{
		Name:  m.prompt("Enter a new name (leave blank to keep the current one): "),
		Email: strings.TrimSpace(m.prompt("Enter a new email (leave blank to keep the current one): ")),
	}
	age, err := m.promptInt("Enter a new age (0 to keep the current one): ")
	if err != nil {
		return err
	}
	if age < 0 {
		return fmt.Errorf("%w: Age must be positive", errInput)
	}
	req.Age = age

	if req.Email != "" {
		if err := m.validate.Var(req.Email, "email"); err != nil {
			return fmt.Errorf("%w: %s", errInput, inputMessages["Email.email"])
		}
	}

	updated, err := m.users.UpdateUser(ctx, id, req)
	if err != nil {
		return err
	}
	m.println("User updated: " + formatUser(updated))
	return nil
}

func (m *Menu) deleteUser(ctx context.Context) error {
	id, err := m.promptID("Enter the ID of the user to delete: ")
	if err != nil {
		return err
	}
	user, err := m.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	m.println("User deleted: " + formatUser(user))
	return nil
}

func (m *Menu) check(input userInput) error {
	err := m.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := inputMessages[fe.Field()+"."+fe.Tag()]; ok {
			return fmt.Errorf("%w: %s", errInput, msg)
		}
	}
	return fmt.Errorf("%w: %v", errInput, err)
}

func (m *Menu) report(err error) {
	switch {
	case errors.Is(err, errInput):
		m.println(strings.TrimPrefix(err.Error(), errInput.Error()+": "))
	case errors.Is(err, domain.ErrPersistence):
		m.log.Errorf("Console: %v", err)
		m.println("Operation failed: " + domain.PublicMessage(err))
	default:
		m.println(domain.PublicMessage(err))
	}
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) prompt(label string) string {
	m.print(label)
	line, _ := m.readLine()
	return line
}

// promptInt treats a blank answer as 0.
func (m *Menu) promptInt(label string) (int, error) {
	raw := m.prompt(label)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errInput, raw)
	}
	return n, nil
}

func (m *Menu) promptID(label string) (int64, error) {
	raw := m.prompt(label)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid ID", errInput, raw)
	}
	return id, nil
}

func (m *Menu) print(s string)   { fmt.Fprint(m.out, s) }
func (m *Menu) println(s string) { fmt.Fprintln(m.out, s) }

func formatUser(u *domain.UserResponse) string {
	return fmt.Sprintf("User{id=%d, name=%s, email=%s, age=%d, createdAt=%s}",
		u.ID, u.Name, u.Email, u.Age, u.CreatedAt.Format(time.RFC3339))
}
