package install

import (
	"fmt"
	"os"
	"path/filepath"
	"syslogsrv/internal/global"
)

const sysAutocompleteDir string = "/usr/share/bash-completion/completions"

const bashCompletionScript string = `# bash completion for syslogsrv
_syslogsrv() {
    local cur prev cmd
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    cmd="${COMP_WORDS[1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "serve configure version" -- "${cur}") )
        return 0
    fi

    case "${prev}" in
        -c|--config|--config-template|--cert-out|--key-out)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
    esac

    case "${cmd}" in
        serve)
            COMPREPLY=( $(compgen -W "-c --config -v --verbosity" -- "${cur}") )
            ;;
        configure)
            COMPREPLY=( $(compgen -W "--config-template --password --create-cert --cert-out --key-out --hosts --install-service --uninstall-service" -- "${cur}") )
            ;;
        version)
            COMPREPLY=( $(compgen -W "-v --verbosity" -- "${cur}") )
            ;;
    esac
    return 0
}
complete -F _syslogsrv syslogsrv
`

// System completion dir, or the users home as fallback
func completionPath(create bool) (path string, err error) {
	_, err = os.Stat(sysAutocompleteDir)
	if err == nil {
		path = filepath.Join(sysAutocompleteDir, global.DefaultCompletionName)
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		err = fmt.Errorf("failed to find user home directory: %w", err)
		return
	}
	userDir := filepath.Join(homeDir, ".bash_completion.d")
	if create {
		err = os.MkdirAll(userDir, 0750)
		if err != nil {
			err = fmt.Errorf("failed to create user autocomplete dir: %w", err)
			return
		}
		fmt.Printf("System completion dir missing, installing bash completion under %s\n", userDir)
		fmt.Printf("Make sure ~/.bashrc sources ~/.bash_completion and ~/.bash_completion.d/*\n")
	}
	path = filepath.Join(userDir, global.DefaultCompletionName)
	return
}

func installBashAutocomplete() (err error) {
	autoCompleteFilePath, err := completionPath(true)
	if err != nil {
		return
	}

	err = os.WriteFile(autoCompleteFilePath, []byte(bashCompletionScript), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write autocompletion file: %w", err)
		return
	}
	return
}

func uninstallBashAutocomplete() (err error) {
	autoCompleteFilePath, err := completionPath(false)
	if err != nil {
		return
	}

	err = os.Remove(autoCompleteFilePath)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove autocompletion file: %w", err)
		return
	}
	err = nil

	fmt.Printf("Successfully removed shell autocompletion\n")
	return
}
